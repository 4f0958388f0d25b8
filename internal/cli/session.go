package cli

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Arsen1987144/joycity-marketplace/internal/app"
	"github.com/Arsen1987144/joycity-marketplace/internal/config"
)

// session is one command's view of the storefront.
type session struct {
	app   *app.App
	scope string
	out   *OutputFormatter
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads config, sets up logging on stderr and builds the app.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := newFormatter(cmd, opts)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "не удалось загрузить конфигурацию", err)
	}
	if opts.Scope != "" {
		cfg.CartScope = opts.Scope
	}
	app.SetupLogging(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)

	newApp := opts.NewApp
	if newApp == nil {
		newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
			return app.New(ctx, cfg)
		}
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeStorage, "не удалось открыть хранилище", err)
	}

	out.VerboseLog("Backend %s, cart scope %q", cfg.Storage.Backend, cfg.CartScope)
	return &session{app: a, scope: cfg.CartScope, out: out}, nil
}

func (s *session) Close() {
	if err := s.app.Close(); err != nil {
		slog.Error("Failed to close storefront", "err", err)
	}
}

func (s *session) storageError(err error) error {
	return s.out.Fail(ExitCommandError, ErrCodeStorage, "ошибка хранилища", err)
}

// parseInt parses a positional argument, reporting it as invalid input.
func parseInt(out *OutputFormatter, name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, out.Fail(ExitFailure, ErrCodeInvalidArgument, name+" должен быть числом: "+strconv.Quote(raw), nil)
	}
	return n, nil
}
