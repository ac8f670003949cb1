package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"metadata-enricher/internal/mapping"
	"metadata-enricher/internal/record"
)

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the profile and list its diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile(g.ConfigPath)
			if err != nil {
				return err
			}

			return runValidate(cmd.OutOrStdout(), p)
		},
	}
}

func runValidate(w io.Writer, p *mapping.Profile) error {
	diags := mapping.Validate(p)

	for _, d := range diags.All() {
		_, _ = fmt.Fprintf(w, "%-7s %s\n", d.Severity, d.String())
	}

	if err := diags.Error(); err != nil {
		return fmt.Errorf("profile has %d error(s)", len(diags.Errors))
	}

	_, _ = fmt.Fprintf(w, "profile ok: %d aliases, %d secondary lookups\n",
		len(p.AliasEntries()), len(p.Secondary))

	return nil
}

func newTypesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the expected attribute kinds per MIME type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile(g.ConfigPath)
			if err != nil {
				return err
			}

			return printTypes(cmd.OutOrStdout(), p)
		},
	}
}

func printTypes(w io.Writer, p *mapping.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MIME TYPE\tATTRIBUTE\tKIND")

	mimes := make([]string, 0, len(p.Types))
	for m := range p.Types {
		mimes = append(mimes, m)
	}

	sort.Strings(mimes)

	for _, m := range mimes {
		reg := p.Types[m]

		names := make([]string, 0, len(reg))
		for n := range reg {
			names = append(names, n)
		}

		sort.Strings(names)

		for _, n := range names {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", m, n, reg[n])
		}
	}

	return tw.Flush()
}

func newShowCmd(g *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the stored attributes of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ref, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			e, err := a.store.Entity(cmd.Context(), ref)
			if err != nil {
				return err
			}

			var rec *record.Record
			if all {
				rec, err = a.store.RawRecord(cmd.Context(), ref)
			} else {
				rec, err = a.store.ReadRecord(cmd.Context(), ref)
			}

			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s\nname: %s\ntype: %s\n\n", e.Ref, e.Name, e.MimeType)

			return printRecord(w, rec)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include internal attributes")

	return cmd
}

func printRecord(w io.Writer, rec *record.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for f := range rec.All() {
		for i, v := range f.Values {
			name := f.Name
			if i > 0 {
				name = ""
			}

			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, v.Kind(), record.Format(v))
		}
	}

	return tw.Flush()
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in profile to a file for editing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "enricher.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to replace it", path)
			}

			p, err := mapping.DefaultProfile()
			if err != nil {
				return err
			}

			if err := mapping.WriteFile(p, path); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")

	return cmd
}
