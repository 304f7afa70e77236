package main

import "trendhive/cmd/trendhive/commands"

func main() {
	commands.Execute()
}
