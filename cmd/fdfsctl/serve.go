package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fdfskit/pkg/fdfshttp"
	"github.com/dmitrymomot/fdfskit/pkg/httpserver"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var (
		addr         string
		maxUpload    int64
		allowedTypes []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP file API",
		Long: `Serve exposes upload, download, delete, info and path normalization
over HTTP until interrupted. HTTP_* variables configure the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, log, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			router := fdfshttp.NewRouter(client,
				fdfshttp.WithLogger(log),
				fdfshttp.WithMaxUploadSize(maxUpload),
				fdfshttp.WithAllowedTypes(allowedTypes...),
			)

			opts := []httpserver.Option{httpserver.WithLogger(log.With(logger.Component("httpserver")))}
			if addr != "" {
				opts = append(opts, httpserver.WithAddr(addr))
			}
			return httpserver.NewFromConfig(cfg.HTTP, opts...).Run(cmd.Context(), router)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address, overrides HTTP_ADDR")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", 32<<20, "Maximum upload request size in bytes")
	cmd.Flags().StringSliceVar(&allowedTypes, "allow-type", nil, "Allowed upload MIME types (default any)")
	return cmd
}
