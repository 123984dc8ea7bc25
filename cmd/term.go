package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/skillbench/internal/terminal"
)

var termEnv string

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Start the simulated workspace terminal on stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := terminal.ParseEnv(termEnv)
		if err != nil {
			return err
		}
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		sess := terminal.NewSession("cli", env)
		for _, n := range ws.Tree.FolderContents(ws.Tree.Root().Path) {
			sess.Handler.Listing = append(sess.Handler.Listing, entryName(n.Name, n.IsFolder()))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Skill Builder Terminal")
		fmt.Fprintln(out, `Type "help" for available commands`)
		fmt.Fprintln(out)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, sess.Prompt())
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			if res := sess.Submit(scanner.Text()); res != "" {
				fmt.Fprintln(out, res)
			}
		}
	},
}

func entryName(name string, folder bool) string {
	if folder {
		return name + "/"
	}
	return name
}

func init() {
	termCmd.Flags().StringVar(&termEnv, "env", string(terminal.EnvBash), "interpreter to simulate: bash or node")
	rootCmd.AddCommand(termCmd)
}
