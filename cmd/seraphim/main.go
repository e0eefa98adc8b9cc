package main

import cmd "github.com/rohmanhakim/seraphim/internal/cli"

func main() {
	cmd.Execute()
}
