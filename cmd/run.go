package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/transcript"
)

var (
	runThread string
	runName   string
	runModel  string
	runSpeed  string
	runOutput string
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Submit a prompt and stream the simulated run",
	Long: `Submit a prompt to a thread and stream each trajectory step as it lands.
Interrupting the command (Ctrl-C) cancels the run; the steps recorded so far
are kept and the session ends as failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		store := run.NewStore(ws.Threads)

		threadID := runThread
		if threadID == "" {
			threadID = store.CreateThread(runName).ID
		} else if _, ok := store.Thread(threadID); !ok {
			return fmt.Errorf("unknown thread: %s", threadID)
		}
		model := runModel
		if model == "" {
			model = cfg.DefaultModel
		}
		exec := newExecutor(store)
		if runSpeed != "" {
			sp, err := run.ParseSpeed(runSpeed)
			if err != nil {
				return err
			}
			exec.MinDelay, exec.MaxDelay = sp.DelayRange()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s · %s\n  > %s\n", threadID, model, prompt)
		printed := 0
		final, err := exec.Execute(cmd.Context(), run.NewController(), threadID, prompt, model, func(s run.Session) {
			for ; printed < len(s.Trajectory); printed++ {
				writeStep(out, s.Trajectory[printed])
			}
		})
		if err != nil {
			return err
		}

		var elapsed time.Duration
		if final.CompletedAt != nil {
			elapsed = final.CompletedAt.Sub(final.CreatedAt).Round(10 * time.Millisecond)
		}
		switch {
		case final.Cancelled:
			fmt.Fprintf(out, "Run cancelled after %d steps\n", len(final.Trajectory))
		case final.Status == run.StatusFailed:
			fmt.Fprintf(out, "Run failed after %d steps: %s\n", len(final.Trajectory), final.Err)
		default:
			fmt.Fprintf(out, "Run completed: %d steps in %s\n", len(final.Trajectory), elapsed)
		}

		if runOutput != "" {
			th, _ := store.Thread(threadID)
			if err := writeTranscript(runOutput, runFormat, transcript.New(th, final, ws.CurrentVersion, time.Now())); err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Info("transcript written", "path", runOutput, "session", final.ID)
			fmt.Fprintf(out, "Transcript written to %s\n", runOutput)
		}
		if final.Status == run.StatusFailed && !final.Cancelled {
			return fmt.Errorf("run %s failed: %s", final.ID, final.Err)
		}
		return nil
	},
}

// formatFor picks the transcript format: explicit wins, then the file
// extension, then markdown.
func formatFor(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "markdown"
}

func writeTranscript(path, format string, t *transcript.Transcript) error {
	r, err := transcript.RendererFor(formatFor(path, format))
	if err != nil {
		return err
	}
	data, err := r.Render(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runThread, "thread", "", "existing thread id to submit to (default: a new thread)")
	runCmd.Flags().StringVar(&runName, "name", "", "name for the new thread")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "model to run (default from config)")
	runCmd.Flags().StringVar(&runSpeed, "speed", "", "stream speed: fast, normal or slow")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write a transcript of the session to this file")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "transcript format: markdown or json (default from the file extension)")
	rootCmd.AddCommand(runCmd)
}
