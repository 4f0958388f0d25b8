package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpdelivery "github.com/Arsen1987144/joycity-marketplace/internal/delivery/http"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web shop",
		Long: `Run the web shop and its JSON API. Every browser gets its own cart
scope through a cookie. Stops gracefully on SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions, addr string) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.app.Config
	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	handler, err := httpdelivery.NewHandler(
		s.app.Catalog,
		s.app.Carts,
		s.app.Orders,
		s.app.Tracking,
		s.app.Metrics,
		httpdelivery.Options{CookieName: cfg.HTTP.CookieName, AllowOrigins: cfg.HTTP.AllowOrigins},
	)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeConfig, "не удалось подготовить страницы", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s.app.StartConsumers(ctx)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeConfig, "не удалось открыть адрес "+addr, err)
	}

	httpServer := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// Countdown streams end with the server context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("🚀 HTTP server starting", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeConfig, "ошибка HTTP-сервера", err)
		}
	}

	slog.Info("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "err", err)
	}
	return nil
}
