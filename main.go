package main

import "github.com/KaramelBytes/speedatlas-cli/cmd"

func main() {
	cmd.Execute()
}
