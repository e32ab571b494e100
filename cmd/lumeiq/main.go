// Package main is the single-binary entrypoint for LumeIQ.
// One binary serves the API, the CLI surfaces, and the local impact store.
package main

import "github.com/lumeiq-app/lumeiq/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
