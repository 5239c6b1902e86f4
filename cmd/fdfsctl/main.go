package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fdfskit/pkg/config"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFiles []string
		envFiles    []string
	)

	root := &cobra.Command{
		Use:   "fdfsctl",
		Short: "Store, fetch and inspect files addressed by group/path keys",
		Long: `fdfsctl talks to the file store configured through FDFS_* variables
(local disk, S3 or Aliyun OSS), serves it over HTTP and normalizes paths.

Configuration is read from the environment, then from --env files,
then from --config YAML files for keys that are still unset.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(envFiles) > 0 {
				if err := config.LoadEnv(envFiles...); err != nil {
					return err
				}
			}
			if len(configFiles) > 0 {
				return config.LoadYAML(configFiles...)
			}
			return nil
		},
	}

	root.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "YAML config file (can be repeated)")
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, ".env file to load (can be repeated)")

	root.AddCommand(
		newNormalizeCmd(),
		newSubPathCmd(),
		newSegmentCmd(),
		newUploadCmd(),
		newDownloadCmd(),
		newDeleteCmd(),
		newInfoCmd(),
		newServeCmd(),
	)
	return root
}
