package main

import "github.com/pfrederiksen/maxpreps-stats/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
