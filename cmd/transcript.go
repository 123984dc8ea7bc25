package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/skillbench/internal/transcript"
	"github.com/fakeyudi/skillbench/internal/tui"
)

var (
	viewPlain     bool
	convertFormat string
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Open or convert exported run transcripts",
}

var transcriptViewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Open a transcript in the read-only viewer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTranscript(args[0])
		if err != nil {
			return err
		}
		if viewPlain || !term.IsTerminal(os.Stdin.Fd()) {
			writeTranscriptPlain(cmd.OutOrStdout(), t)
			return nil
		}
		return tui.ViewTranscript(t, filepath.Base(args[0]))
	},
}

var transcriptConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-render a transcript as markdown or JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTranscript(args[0])
		if err != nil {
			return err
		}
		if err := writeTranscript(args[1], convertFormat, t); err != nil {
			return err
		}
		cmd.Printf("Transcript written to %s\n", args[1])
		return nil
	},
}

func readTranscript(path string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return transcript.ParserFor(data).Parse(data)
}

func writeTranscriptPlain(w io.Writer, t *transcript.Transcript) {
	fmt.Fprintf(w, "%s  %s\n", t.Thread.ID, t.Thread.Name)
	if t.Version != "" {
		fmt.Fprintf(w, "version: %s\n", t.Version)
	}
	if d := t.Duration(); d > 0 {
		fmt.Fprintf(w, "duration: %s\n", d)
	}
	fmt.Fprintln(w)
	writeSession(w, t.Session)
}

func init() {
	transcriptViewCmd.Flags().BoolVar(&viewPlain, "plain", false, "print the transcript instead of opening the viewer")
	transcriptConvertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "output format: markdown or json (default from the file extension)")
	transcriptCmd.AddCommand(transcriptViewCmd, transcriptConvertCmd)
	rootCmd.AddCommand(transcriptCmd)
}
