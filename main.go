package main

import "minute-condenser/cmd"

func main() {
	cmd.Execute()
}
