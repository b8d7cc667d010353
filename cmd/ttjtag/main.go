package main

import "github.com/OpenTraceLab/ttjtag/cmd/ttjtag/cmd"

func main() {
	cmd.Execute()
}
