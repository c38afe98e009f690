// Package main provides the givebox CLI for browsing NGO needs and
// recording donations from a terminal.
package main

import "github.com/mscno/givebox/cmd/givebox/commands"

func main() {
	commands.Execute(Version)
}
