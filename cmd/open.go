package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/tui"
)

var logFile string

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the interactive workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdin.Fd()) {
			return errors.New("open needs an interactive terminal")
		}
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		// The alternate screen owns stderr, so logs go to a file or nowhere.
		var w io.Writer = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		logger := pslog.NewWithOptions(w, pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: pslog.DebugLevel})
		ctx := pslog.ContextWithLogger(cmd.Context(), logger)
		logger.Info("workspace opened", "seed", ws.Source, "version", ws.CurrentVersion)

		store := run.NewStore(ws.Threads)
		return tui.Run(ctx, tui.Options{
			Workspace:    ws,
			Store:        store,
			Executor:     newExecutor(store),
			Models:       ws.Models,
			DefaultModel: cfg.DefaultModel,
		})
	},
}

func init() {
	openCmd.Flags().StringVar(&logFile, "log-file", "", "append structured logs to this file")
	rootCmd.AddCommand(openCmd)
}
