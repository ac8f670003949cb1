// Package main provides the CLI entrypoint for metadata-enricher.
//
// metadata-enricher looks up files against an external metadata service and
// merges what it finds into their stored attributes:
//   - enrich: enrich the given files once
//   - watch: enrich files as they appear in a directory
//   - validate: check a profile
//   - types: list the expected attribute kinds per MIME type
//   - show: print the stored attributes of a file
//   - init: write the built-in profile to a file for editing
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const appName = "metadata-enricher"

// Version is set at build time.
var Version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Enrich file metadata from an external lookup service",
		Long: `metadata-enricher maps the attributes of a file to the parameters of an
external lookup service, fetches matching records, and merges them back into
the file's attributes under an explicit overwrite policy.

Attributes are kept in a SQLite database (--db). The lookup service, its
aliases and follow-up lookups are described by a YAML profile (--config).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	g.register(rootCmd)

	rootCmd.AddCommand(
		newEnrichCmd(g),
		newWatchCmd(g),
		newValidateCmd(g),
		newTypesCmd(g),
		newShowCmd(g),
		newInitCmd(),
	)

	return rootCmd
}
