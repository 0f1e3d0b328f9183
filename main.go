package main

import "github.com/KaramelBytes/cafesales-cli/cmd"

func main() {
	cmd.Execute()
}
