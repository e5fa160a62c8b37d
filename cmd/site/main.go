// Command site builds and serves the blog post graph.
//
// Usage:
//
//	site [flags] <command>
//
// Commands:
//
//	serve   - serve the graph API, rebuilding when posts change
//	build   - build the graph once and write it as JSON
//	publish - build the graph and upload it to S3
//	graph   - print the vertices and edges of the graph
package main

import (
	"fmt"
	"os"

	"github.com/TomerAberbach/website/cmd/site/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
