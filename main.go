package main

import "dogwalk-backend/cmd"

func main() {
	cmd.Run()
}
