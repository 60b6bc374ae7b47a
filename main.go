package main

import "github.com/mvas-it/m365ops/cmd"

func main() {
	cmd.Execute()
}
