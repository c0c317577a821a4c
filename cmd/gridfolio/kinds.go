package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridfolio/internal/registry"
)

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List all widget kinds",
		Long:  `Shows every widget kind with its default, minimum and expanded size in grid cells.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printKinds(cmd.OutOrStdout(), registry.List())
			return nil
		},
	}
}

func printKinds(w io.Writer, kinds []registry.Kind) {
	if len(kinds) == 0 {
		fmt.Fprintln(w, "No widget kinds registered.")
		return
	}

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, k := range kinds {
		maxIDLen = max(maxIDLen, len(k.ID))
	}

	fmt.Fprintf(w, "  %-*s  %-12s  %-7s  %-7s  %-8s  %s\n", maxIDLen, "ID", "Title", "Default", "Min", "Expanded", "Notes")
	fmt.Fprintf(w, "  %-*s  %-12s  %-7s  %-7s  %-8s  %s\n", maxIDLen, "--", "-----", "-------", "---", "--------", "-----")

	for _, k := range kinds {
		expanded := "-"
		if k.Expandable() {
			expanded = units(k.ExpandedUnits)
		}
		var notes []string
		if k.Multiple {
			notes = append(notes, "multiple")
		}
		if k.InDefaultLayout {
			notes = append(notes, "default layout")
		}
		fmt.Fprintf(w, "  %-*s  %-12s  %-7s  %-7s  %-8s  %s\n",
			maxIDLen, k.ID, k.Title, units(k.Default()), units(k.MinUnits), expanded, strings.Join(notes, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sizes are in grid cells (width x height).")
}

func units(u registry.Units) string {
	return fmt.Sprintf("%dx%d", u.W, u.H)
}
