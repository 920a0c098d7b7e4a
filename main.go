package main

import "github.com/marvin-bot/marvin/cmd"

func main() {
	cmd.Execute()
}
