package main

import "snowddl/cmd"

func main() {
	cmd.Execute()
}
