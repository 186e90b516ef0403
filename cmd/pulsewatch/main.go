package main

import "community-pulse/internal/cli"

func main() {
	cli.Execute()
}
