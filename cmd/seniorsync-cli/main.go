package main

import "seniorsync/internal/cli"

// version is injected by the linker via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
