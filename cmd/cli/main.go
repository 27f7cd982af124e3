package main

import "paketomat/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
