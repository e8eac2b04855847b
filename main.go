package main

import "github.com/Tiliavir/time-keeper/cmd"

func main() {
	cmd.Execute()
}
