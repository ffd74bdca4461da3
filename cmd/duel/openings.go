package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-duel/internal/openings"
)

func newOpeningsCmd(fv *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "openings",
		Short: "List the opening lines scripted players can play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fv)
			if err != nil {
				return err
			}
			cat, err := openings.New(cfg.OpeningsDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range cat.Keys() {
				line, err := cat.Lookup(key)
				if err != nil {
					return err
				}
				marker := " "
				if key == cfg.Opening {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-24s %s\n", marker, key, line.Name)
				fmt.Fprintf(out, "  %s\n", strings.Join(line.Interleaved(), " "))
			}
			return nil
		},
	}
}
