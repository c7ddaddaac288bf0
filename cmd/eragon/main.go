package main

import "github.com/smallbiznis/eragon/cmd/eragon/commands"

func main() {
	commands.Execute()
}
