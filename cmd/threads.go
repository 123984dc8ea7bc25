package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/skillbench/internal/run"
)

var threadsCmd = &cobra.Command{
	Use:   "threads [id]",
	Short: "List recorded run threads, or show one thread's sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		store := run.NewStore(ws.Threads)
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			now := time.Now()
			for _, th := range store.Threads() {
				fmt.Fprintf(out, "%-10s %-24s %-10s %2d runs  %s\n",
					th.ID, th.Name, th.Status, len(th.Sessions), run.FormatTimeAgo(th.CreatedAt, now))
			}
			return nil
		}

		th, ok := store.Thread(args[0])
		if !ok {
			return fmt.Errorf("unknown thread: %s", args[0])
		}
		fmt.Fprintf(out, "%s  %s  (%s)\n", th.ID, th.Name, th.Status)
		for _, s := range th.Sessions {
			fmt.Fprintln(out)
			writeSession(out, s)
		}
		return nil
	},
}

func writeSession(w io.Writer, s run.Session) {
	status := string(s.Status)
	if s.Cancelled {
		status += " (cancelled)"
	}
	fmt.Fprintf(w, "%s  %s  %s  %s\n", s.ID, s.Model, status, s.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  > %s\n", s.Prompt)
	for _, step := range s.Trajectory {
		writeStep(w, step)
	}
	if s.Err != "" {
		fmt.Fprintf(w, "  error: %s\n", s.Err)
	}
}

// writeStep prints one step; continuation lines align under the content.
func writeStep(w io.Writer, s run.Step) {
	lines := strings.Split(s.Content, "\n")
	fmt.Fprintf(w, "  %s  %-9s  %s\n", s.Timestamp.Format("15:04:05"), s.Type, lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintln(w, strings.Repeat(" ", 23)+l)
	}
}

func init() {
	rootCmd.AddCommand(threadsCmd)
}
