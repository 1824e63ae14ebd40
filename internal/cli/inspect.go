package cli

import (
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/brettbedarf/treefs/diagram"
	"github.com/brettbedarf/treefs/manifest"
	"github.com/brettbedarf/treefs/paths"
	"github.com/brettbedarf/treefs/volume"
	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"
	"golang.org/x/term"
)

var inspectFlags struct {
	color bool
	long  bool
}

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Draw the tree below a path (default /)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadTree(cmd)
		if err != nil {
			return err
		}
		target := argOrRoot(args)
		sub, err := volume.GetNode(root, target)
		if err != nil {
			return err
		}
		styles := diagram.PlainStyles()
		if useColor(cmd) {
			styles = diagram.DefaultStyles()
		}
		fmt.Fprintln(cmd.OutOrStdout(), diagram.Build(sub, paths.Normalize(target), styles).String())
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory in insertion order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadTree(cmd)
		if err != nil {
			return err
		}
		dir := argOrRoot(args)
		names, err := volume.ReadDirectory(root, dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !inspectFlags.long {
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
		for _, name := range names {
			child, err := volume.GetNode(root, paths.Join(dir, name))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", modeString(child), len(child.Data()), formatTime(child.Metadata().ModTime), name)
		}
		return w.Flush()
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadTree(cmd)
		if err != nil {
			return err
		}
		data, err := volume.ReadFile(root, args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show a node's type, mode, size and modification time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadTree(cmd)
		if err != nil {
			return err
		}
		n, err := volume.GetNode(root, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path:  %s\n", paths.Normalize(args[0]))
		fmt.Fprintf(out, "type:  %s\n", n.Kind())
		fmt.Fprintf(out, "mode:  %s\n", modeString(n))
		if n.IsFile() {
			fmt.Fprintf(out, "size:  %d\n", len(n.Data()))
			fmt.Fprintf(out, "blake3: %x\n", blake3.Sum256(n.Data()))
		} else {
			fmt.Fprintf(out, "items: %d\n", n.Len())
		}
		fmt.Fprintf(out, "mtime: %s\n", formatTime(n.Metadata().ModTime))
		return nil
	},
}

func init() {
	treeCmd.Flags().BoolVar(&inspectFlags.color, "color", false, "Highlight directories (default: on when stdout is a terminal)")
	lsCmd.Flags().BoolVarP(&inspectFlags.long, "long", "l", false, "Show mode, size and modification time")

	rootCmd.AddCommand(treeCmd, lsCmd, catCmd, statCmd)
}

// useColor honours an explicit --color, else detects a terminal
func useColor(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("color") {
		return inspectFlags.color
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func argOrRoot(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return args[0]
}

func modeString(n *manifest.Tree) string {
	mode := n.Metadata().Mode.Perm()
	if n.IsDirectory() {
		mode |= fs.ModeDir
	}
	return mode.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
