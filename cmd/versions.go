package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ancestryOf string

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List skill versions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if ancestryOf != "" {
			if _, ok := ws.Versions.ByID(ancestryOf); !ok {
				return fmt.Errorf("unknown version: %s", ancestryOf)
			}
			for i, v := range ws.Versions.AncestryPath(ancestryOf) {
				arrow := "  "
				if i > 0 {
					arrow = "→ "
				}
				fmt.Fprintf(out, "%s%-4s %s\n", arrow, v.ID, v.Name)
			}
			return nil
		}

		for _, v := range ws.Versions.AllDescendingByNumber() {
			marker := " "
			if v.Name == ws.CurrentVersion {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-4s %-12s %s", marker, v.ID, v.Name, v.Date)
			if v.Description != "" {
				fmt.Fprintf(out, "  %s", v.Description)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	versionsCmd.Flags().StringVar(&ancestryOf, "path", "", "print the chain from the root version to this version id")
	rootCmd.AddCommand(versionsCmd)
}
