package main

import "github.com/lumipallolabs/rex/internal/cli"

func main() {
	cli.Execute()
}
