package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/fakeyudi/skillbench/internal/seed"
)

var checkWatch bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the seed document",
	Long: `Load and validate the configured seed document and print a summary.
With --watch, keep running and re-validate whenever the file changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		writeSummary(out, ws)
		if !checkWatch {
			return nil
		}
		if cfg.SeedPath == "" {
			return errors.New("--watch needs a seed file (--seed or seed_path)")
		}
		cmd.Printf("watching %s (Ctrl-C to stop)\n", cfg.SeedPath)
		log := pslog.Ctx(cmd.Context())
		return seed.Watch(cmd.Context(), cfg.SeedPath, func(ws *seed.Workspace, err error) {
			if err != nil {
				log.Warn("seed reload failed", "err", err)
				fmt.Fprintf(out, "error: %v\n", err)
				return
			}
			writeSummary(out, ws)
		})
	},
}

func writeSummary(w io.Writer, ws *seed.Workspace) {
	fmt.Fprintf(w, "ok: %s: %d files, %d versions (current %s), %d threads, %d models\n",
		ws.Source, len(ws.Tree.Files()), ws.Versions.Len(), ws.CurrentVersion, len(ws.Threads), len(ws.Models))
}

func init() {
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "re-validate whenever the seed file changes")
	rootCmd.AddCommand(checkCmd)
}
