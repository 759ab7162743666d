package main

import "github.com/joetifa2003/layoutigo/cmd/layoutigo/cmd"

func main() {
	cmd.Execute()
}
