package main

import "github.com/slipway/slipway/cmd/slipway/cmd"

func main() {
	cmd.Execute()
}
