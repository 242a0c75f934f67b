package main

import "github.com/kozaktomas/photo-sheet/cmd"

func main() {
	cmd.Execute()
}
