package main

import "yasdl/cmd"

func main() {
	cmd.Execute()
}
