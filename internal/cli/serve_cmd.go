package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/labcheck/internal/network"
	"github.com/leengari/labcheck/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		tcpPort  int
		httpAddr string
		setsDir  string
		noTCP    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve evaluations over HTTP and TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("tcp-port") {
				a.cfg.Server.TCPPort = tcpPort
			}
			if cmd.Flags().Changed("http-addr") {
				a.cfg.Server.HTTPAddr = httpAddr
			}

			if cmd.Flags().Changed("sets-dir") {
				a.cfg.Server.SetsDir = setsDir
			}

			var sets *storage.Registry
			if a.cfg.Server.SetsDir != "" {
				sets = storage.NewRegistry(a.cfg.Server.SetsDir, a.logger)
			}
			svc := network.NewService(a.engine(), sets, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return network.ListenAndServe(ctx, a.cfg.Server.HTTPAddr,
					network.NewRouter(svc, a.cfg.Server.AllowedOrigins), a.logger)
			})
			if !noTCP {
				g.Go(func() error {
					return network.Start(ctx, a.cfg.Server.TCPPort, svc)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&tcpPort, "tcp-port", 4444, "TCP port for newline-delimited JSON requests")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&setsDir, "sets-dir", "", "Directory of named formula sets (overrides server.sets_dir)")
	cmd.Flags().BoolVar(&noTCP, "no-tcp", false, "Disable the TCP listener")

	return cmd
}
