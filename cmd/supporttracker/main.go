package main

import "github.com/tansive/supporttracker/internal/cli"

func main() {
	cli.Execute()
}
