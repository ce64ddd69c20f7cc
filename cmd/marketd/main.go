package main

import "github.com/openexch/marketd/internal/cli"

func main() {
	cli.Execute()
}
