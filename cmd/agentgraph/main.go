// Command agentgraph builds, repairs and renders agent workflow graphs.
package main

import "github.com/randalmurphal/agentgraph/internal/cli"

func main() {
	cli.Execute()
}
