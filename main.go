package main

import "github.com/KaramelBytes/aemxyz/cmd"

func main() {
	cmd.Execute()
}
