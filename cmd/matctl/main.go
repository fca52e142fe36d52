// Command matctl is operator tooling for a materializer partition: seed
// operations from a YAML scenario file into a commit log, read a key back
// at a given vector clock, and print per-key operation counts from the
// commit log. It is not part
// of the materializer's external API (pkg/materializer.Materializer) — it
// drives that API the way an operator or an integration test would.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
