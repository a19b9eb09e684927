package main

import "github.com/Nabeerak/hackathon-todo/internal/console/cli"

func main() {
	cli.Execute()
}
