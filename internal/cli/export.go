package cli

import (
	"fmt"
	"os"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/iofs"
	"github.com/brettbedarf/treefs/node"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the tree to a directory on disk",
	Long: `Copies every directory and file of the manifest tree below <dir>.
The target must not contain any of the tree's paths already.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadTree(cmd)
		if err != nil {
			return err
		}
		fsys := iofs.New(root, iofs.Options[[]byte, node.Attrs]{
			Content: iofs.Bytes,
			Attrs:   identityAttrs,
		})
		if err := os.CopyFS(args[0], fsys); err != nil {
			return fmt.Errorf("exporting tree: %w", err)
		}
		util.GetLogger("CLI").Info().Str("dir", args[0]).Msg("tree exported")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func identityAttrs(a node.Attrs) node.Attrs { return a }
