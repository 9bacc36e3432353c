package main

import "pty-terminal/cmd"

func main() {
	cmd.Execute()
}
