// Package main provides the strand CLI.
package main

import "github.com/mesh-intelligence/strand/internal/cli"

func main() {
	cli.Execute()
}
