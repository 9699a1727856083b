package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BBQAnChang/SBHomework/internal/httpapi/server"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
)

const defaultGracefulTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the user manager over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				opts.cfg.APIServer.Port = port
			}
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides config)")

	return cmd
}

func runServe(parent context.Context, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, err := opts.newManager(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	srv := server.NewAPIServer(opts.cfg, manager)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Logger(ctx).WithError(err).Warn("failed to flush telemetry")
	}
	if err := <-errCh; err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
