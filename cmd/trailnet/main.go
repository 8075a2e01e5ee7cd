package main

import "github.com/carthorse/trailnet/internal/cli"

func main() {
	cli.Execute()
}
