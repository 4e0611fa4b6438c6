// Package main hosts the leadlens service entrypoint.
package main

import "github.com/leadlens/leadlens/cmd"

func main() {
	cmd.Execute()
}
