package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	"github.com/jrsteele09/go-waterres-client/auth"
	"github.com/jrsteele09/go-waterres-client/internal/config"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
	"github.com/jrsteele09/go-waterres-client/internal/logger"
	"github.com/jrsteele09/go-waterres-client/internal/metrics"
	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/jrsteele09/go-waterres-client/kvstore/filestore"
	"github.com/jrsteele09/go-waterres-client/kvstore/redisstore"
	"github.com/jrsteele09/go-waterres-client/kvstore/sqlitestore"
	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/jrsteele09/go-waterres-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = apperrors.Wrapf(apperrors.ErrNotAuthenticated, "run 'waterctl login' first")

// app is the wired client stack one command runs against.
type app struct {
	cfg      config.Config
	client   *apiclient.Client
	session  *auth.Session
	res      *resources.Client
	registry *prometheus.Registry
	closers  []io.Closer
}

func newApp(ctx context.Context, opts *options, stderr io.Writer) (*app, error) {
	cfg, err := config.New(opts.cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.GetLogLevel()
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger.Setup(level, true, stderr)

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	kv, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	a.client = apiclient.New(cfg.GetBaseURL(),
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithMetrics(metrics.New(a.registry)),
		apiclient.WithNavigator(cliNavigator{w: stderr}),
	)
	store := tokenstore.New(kv, tokenstore.WithPassphrase(cfg.GetCredentialsPassphrase()))
	a.session, err = auth.NewSession(a.client, store, auth.WithExpiryThreshold(cfg.GetExpiryThreshold()))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.res = resources.New(a.client, resources.WithDictionaryTTL(cfg.GetDictionaryCacheTTL()))

	log.Debug().
		Str("env", cfg.GetEnv()).
		Str("baseURL", cfg.GetBaseURL()).
		Str("storage", cfg.GetStorageDriver()).
		Msg("Client configured")
	return a, nil
}

func (a *app) openStore(ctx context.Context) (kvstore.Store, error) {
	switch driver := strings.ToLower(a.cfg.GetStorageDriver()); driver {
	case "memory":
		return kvstore.NewInMemoryStore(), nil
	case "", "file":
		return filestore.New(a.cfg.GetStoragePath()), nil
	case "redis":
		client := redisstore.NewClient(a.cfg.GetRedisAddr(), a.cfg.GetRedisPassword(), a.cfg.GetRedisDB())
		store := redisstore.New(client)
		if err := store.HealthCheck(ctx); err != nil {
			client.Close()
			return nil, err
		}
		a.closers = append(a.closers, client)
		return store, nil
	case "sqlite":
		store, err := sqlitestore.Open(ctx, a.cfg.GetStoragePath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return nil, errors.Errorf("[openStore] unknown storage driver %q", driver)
	}
}

// requireLogin restores the persisted session and fails when there is none.
func (a *app) requireLogin(ctx context.Context) error {
	a.session.Initialize(ctx)
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Err(err).Msg("Failed to close storage")
		}
	}
}

type runFunc func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error

// withApp wires the client stack before fn and releases it afterwards.
func withApp(opts *options, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, opts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd, args)
	}
}

// withLogin is withApp for commands that need a logged in session.
func withLogin(opts *options, fn runFunc) func(*cobra.Command, []string) error {
	return withApp(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.requireLogin(ctx); err != nil {
			return err
		}
		return fn(ctx, a, cmd, args)
	})
}

type cliNavigator struct {
	w io.Writer
}

func (n cliNavigator) RedirectToLogin() {
	fmt.Fprintln(n.w, "Not logged in. Run 'waterctl login' to sign in.")
}

func (n cliNavigator) PromptReauthentication() {
	fmt.Fprintln(n.w, "Your session has expired. Run 'waterctl login' to sign in again.")
}
