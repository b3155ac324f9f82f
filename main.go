package main

import "github.com/notecompacter/compacter/cmd"

func main() {
	cmd.Execute()
}
