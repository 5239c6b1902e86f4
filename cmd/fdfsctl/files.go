package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

func newUploadCmd() *cobra.Command {
	var (
		thumb    bool
		isBase64 bool
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload local files and print their full paths and URLs",
		Long: `Upload stores local files concurrently. With --thumb every file must
be an image and a thumbnail is stored next to it. With --base64 the
arguments are the file contents themselves, optionally as data URIs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
			}
			client, _, _, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			results := make([]fdfs.StorePath, len(args))
			failures := make([]error, len(args))

			// Failures are collected per file so one bad argument does not
			// cancel the rest.
			var g errgroup.Group
			g.SetLimit(parallel)
			for i, arg := range args {
				g.Go(func() error {
					ctx := cmd.Context()
					switch {
					case isBase64:
						results[i], failures[i] = client.UploadBase64(ctx, arg)
					case thumb:
						results[i], failures[i] = uploadImage(ctx, client, arg)
					default:
						results[i], failures[i] = client.UploadFile(ctx, arg)
					}
					return nil
				})
			}
			_ = g.Wait()

			out := cmd.OutOrStdout()
			var errs []error
			for i, sp := range results {
				if err := failures[i]; err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", uploadName(args[i], isBase64), err))
					continue
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "File:  %s\n", uploadName(args[i], isBase64))
				}
				fmt.Fprintf(out, "Path:  %s\n", sp.FullPath())
				fmt.Fprintf(out, "URL:   %s\n", client.URL(sp))
				if thumb {
					fmt.Fprintf(out, "Thumb: %s\n", client.URL(fdfs.StorePath{Group: sp.Group, Path: client.ThumbPath(sp.Path)}))
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVarP(&thumb, "thumb", "t", false, "Also store a thumbnail (images only)")
	cmd.Flags().BoolVar(&isBase64, "base64", false, "Treat the argument as base64 content")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "Maximum concurrent uploads")
	cmd.MarkFlagsMutuallyExclusive("thumb", "base64")
	return cmd
}

func uploadImage(ctx context.Context, client *fdfs.Client, path string) (fdfs.StorePath, error) {
	abs, err := fileutil.AbsolutePath(path)
	if err != nil {
		return fdfs.StorePath{}, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return fdfs.StorePath{}, err
	}
	defer func() { _ = f.Close() }()

	return client.UploadImageWithThumb(ctx, f, pathutil.ExtName(abs))
}

// uploadName shortens base64 arguments for messages.
func uploadName(arg string, isBase64 bool) string {
	if isBase64 && len(arg) > 24 {
		return arg[:24] + "..."
	}
	return arg
}

func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <path|url>",
		Short: "Download a file to --output or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if output != "" {
				n, err := client.DownloadTo(cmd.Context(), args[0], output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s written to %s\n", fileutil.ReadableSize(n), output)
				return nil
			}

			rc, err := client.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			_, err = io.Copy(cmd.OutOrStdout(), rc)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file; parent directories are created")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path|url>...",
		Short: "Delete files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			var errs []error
			for _, ref := range args {
				if err := client.Delete(cmd.Context(), ref); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ref, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", ref)
			}
			return errors.Join(errs...)
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path|url>",
		Short: "Display size, creation time and checksum of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			info, err := client.FileInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Group:        %s\n", info.Group)
			fmt.Fprintf(out, "Path:         %s\n", info.Path)
			fmt.Fprintf(out, "Size:         %s (%s bytes)\n", fileutil.ReadableSize(info.Size), humanize.Comma(info.Size))
			fmt.Fprintf(out, "Content-Type: %s\n", info.ContentType)
			if !info.CreateTime.IsZero() {
				fmt.Fprintf(out, "Created:      %s (%s)\n", info.CreateTime.Format(time.RFC3339), humanize.Time(info.CreateTime))
			}
			fmt.Fprintf(out, "CRC32:        %08x\n", info.CRC32)
			fmt.Fprintf(out, "URL:          %s\n", client.URL(info.StorePath()))
			return nil
		},
	}
}
