package main

import "github.com/dmitrijs2005/notesauth/internal/client/cli"

func main() {
	cli.Execute()
}
