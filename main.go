package main

import "github.com/deploymenttheory/go-gptimage/cmd"

func main() {
	cmd.Execute()
}
