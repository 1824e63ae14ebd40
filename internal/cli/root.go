package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/manifest"
	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/snapshot"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	configPath   string
	manifestPath string
	verbose      int
}

// snapshots holds every tree loaded by this process, tagged with the
// absolute manifest path it came from
var snapshots = snapshot.NewRegistry[[]byte, node.Attrs]()

var rootCmd = &cobra.Command{
	Use:   "treefs",
	Short: "Inspect and mount immutable in-memory file trees",
	Long: `treefs builds an immutable file tree from a YAML or JSON manifest and
lets you inspect it (tree, ls, cat, stat) or serve it read-only over FUSE.

Every manifest entry is a file or a directory:

  entries:
    - type: file
      path: /etc/motd
      content: welcome
    - type: file
      path: /srv/index.html
      source: {type: http, url: https://example.com/}`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		util.InitializeLogger(cfg.LogLvl)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "c", "", "Path to a YAML or JSON config override file")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.manifestPath, "manifest", "m", "", "Path to the YAML or JSON manifest describing the tree")
	rootCmd.PersistentFlags().IntVarP(&rootFlags.verbose, "verbose", "v", config.InfoVerbose, "Log verbosity between 1 (error) and 5 (trace)")
}

// loadConfig merges the config file (if any) with flags. Flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if rootFlags.configPath != "" {
		override, err := config.LoadConfigOverrideFile(rootFlags.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg.Merge(override)
	}
	if cmd.Flags().Changed("verbose") || rootFlags.configPath == "" {
		cfg.Merge(&config.ConfigOverride{LogLvl: util.Pointer(rootFlags.verbose)})
	}
	return cfg, nil
}

// loadTree builds the tree described by --manifest
func loadTree(cmd *cobra.Command) (*config.Config, *manifest.Tree, error) {
	logger := util.GetLogger("CLI")

	if rootFlags.manifestPath == "" {
		return nil, nil, fmt.Errorf("--manifest is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	loader := manifest.NewLoader(cfg, nil)
	m, err := loader.LoadFile(rootFlags.manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading manifest: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	root, stats, err := loader.Build(ctx, m)
	if err != nil {
		return nil, nil, fmt.Errorf("building tree: %w", err)
	}

	id, err := snapshots.Commit(root)
	if err != nil {
		return nil, nil, err
	}
	tag, err := filepath.Abs(rootFlags.manifestPath)
	if err != nil {
		tag = rootFlags.manifestPath
	}
	if err := snapshots.Tag(tag, id); err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("manifest", tag).Stringer("snapshot", id).Int("files", stats.Files).Int("dirs", stats.Dirs).Msg("tree loaded")
	return cfg, root, nil
}
