package cli

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/treefs/fusefs"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/iofs"
	"github.com/brettbedarf/treefs/node"
	"github.com/spf13/cobra"
)

var mountFlags struct {
	umount bool
}

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Serve the tree read-only over FUSE until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := util.GetLogger("CLI")
		mnt := args[0]

		if mountFlags.umount {
			if err := exec.Command("fusermount", "-u", mnt).Run(); err != nil {
				return fmt.Errorf("unmounting %s: %w", mnt, err)
			}
			logger.Info().Str("mountpoint", mnt).Msg("unmounted")
			return nil
		}

		cfg, root, err := loadTree(cmd)
		if err != nil {
			return err
		}
		srv, err := fusefs.Mount(fusefs.Options[[]byte, node.Attrs]{
			Mountpoint:   mnt,
			Root:         root,
			Content:      iofs.Bytes,
			Attrs:        identityAttrs,
			FsName:       cfg.FsName,
			Name:         cfg.Name,
			AttrTimeout:  cfg.AttrTimeoutDuration(),
			EntryTimeout: cfg.EntryTimeoutDuration(),
			Debug:        cfg.Debug,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mounted at %s. Press Ctrl+C to unmount.\n", srv.Mountpoint())

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs
			logger.Info().Msg("Unmounting")
			if err := srv.Unmount(); err != nil {
				logger.Error().Err(err).Msg("unmount failed")
			}
		}()

		srv.Wait()
		return nil
	},
}

func init() {
	mountCmd.Flags().BoolVar(&mountFlags.umount, "umount", false, "Unmount <mountpoint> with fusermount and exit")
	rootCmd.AddCommand(mountCmd)
}
