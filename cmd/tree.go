package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/skillbench/internal/pathtree"
)

var treeAll bool

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "List a folder of the skill bundle or print a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		path := ws.Tree.Root().Path
		if len(args) == 1 {
			path = args[0]
		}
		n, ok := ws.Tree.Find(path)
		if !ok {
			return fmt.Errorf("no such path: %s", path)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, breadcrumbLine(ws.Tree.Breadcrumbs(n.Path)))
		fmt.Fprintln(out)
		if !n.IsFolder() {
			fmt.Fprint(out, n.Content)
			if !strings.HasSuffix(n.Content, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		}
		if treeAll {
			printTree(out, ws.Tree, n.Path, 1)
			return nil
		}
		for _, c := range ws.Tree.FolderContents(n.Path) {
			fmt.Fprintln(out, "  "+entryLabel(c))
		}
		return nil
	},
}

func breadcrumbLine(cs []pathtree.Crumb) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, " › ")
}

func entryLabel(n *pathtree.Node) string {
	if n.IsFolder() {
		return n.Name + "/"
	}
	if n.Language != "" {
		return fmt.Sprintf("%-20s %s", n.Name, n.Language)
	}
	return n.Name
}

func printTree(w io.Writer, t *pathtree.Tree, path string, depth int) {
	for _, c := range t.FolderContents(path) {
		fmt.Fprintln(w, strings.Repeat("  ", depth)+entryLabel(c))
		if c.IsFolder() {
			printTree(w, t, c.Path, depth+1)
		}
	}
}

func init() {
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "list every nested entry")
	rootCmd.AddCommand(treeCmd)
}
