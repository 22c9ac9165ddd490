// Package server wires the netwerker components together: storage, the
// email blacklist, authenticators, the graph searcher, services, the gRPC
// endpoint and the metrics endpoint.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/auth"
	"github.com/dmitrijs2005/netwerker/internal/server/blacklist"
	"github.com/dmitrijs2005/netwerker/internal/server/config"
	"github.com/dmitrijs2005/netwerker/internal/server/graph"
	"github.com/dmitrijs2005/netwerker/internal/server/metrics"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/netwerker/internal/server/services"

	gs "github.com/dmitrijs2005/netwerker/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   repomanager.RepositoryManager
	metrics *metrics.Metrics
	grpc    *gs.GRPCServer
}

// NewApp opens and prepares the store and builds every component. The
// caller owns the returned App and must call Run, which closes the store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	m := metrics.New()

	store, err := repomanager.Open(ctx, repomanager.Options{
		Driver:        c.StoreDriver,
		DatabaseDSN:   c.DatabaseDSN,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	})
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	app, err := build(ctx, c, logger, m, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, m *metrics.Metrics, store repomanager.RepositoryManager) (*App, error) {
	if err := store.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("store prepare error: %w", err)
	}

	bl, err := loadBlacklist(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blacklist load error: %w", err)
	}
	logger.Info(ctx, "Email domain blacklist loaded", "domains", bl.Len())

	issuer := auth.NewTokenIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	password, tokens := newAuthenticators(c, issuer, store.Users(), logger, m)

	searcher := graph.NewSearcher(store.Edges(),
		graph.WithLimits(graph.Limits{MaxVisited: c.MaxVisited, MaxDepth: c.MaxDepth}),
		graph.WithEdgeConfirmation(c.ConfirmEdges),
		graph.WithLogger(logger),
		graph.WithObserver(m),
	)

	us := services.NewUserService(store.Users(), bl, issuer, password, tokens, logger)
	fs := services.NewFriendService(store.Users(), store.Edges(), searcher, logger)

	return &App{
		config:  c,
		logger:  logger,
		store:   store,
		metrics: m,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, fs, tokens, m),
	}, nil
}

// newAuthenticators builds the login and bearer-token authenticators. Login
// is limited to c.LoginRequiredRoles when that list is non-empty.
func newAuthenticators(c *config.Config, issuer *auth.TokenIssuer, users auth.UserFinder,
	logger logging.Logger, observer auth.Observer) (*auth.PasswordAuthenticator, *auth.TokenAuthenticator) {
	opts := []auth.Option{auth.WithLogger(logger), auth.WithObserver(observer)}
	return auth.NewPasswordAuthenticator(users, c.LoginRequiredRoles, opts...),
		auth.NewTokenAuthenticator(issuer, users, opts...)
}

// loadBlacklist reads the blacklist from BlacklistFile, or from S3 when a
// bucket is configured. With neither set it returns nil, which validates
// the email shape only.
func loadBlacklist(ctx context.Context, c *config.Config) (*blacklist.Blacklist, error) {
	switch {
	case c.BlacklistFile != "":
		return blacklist.LoadFile(c.BlacklistFile)
	case c.BlacklistS3Bucket != "":
		client, err := blacklist.NewS3Client(ctx, blacklist.S3Options{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
		})
		if err != nil {
			return nil, err
		}
		return blacklist.LoadS3(ctx, client, c.BlacklistS3Bucket, c.BlacklistS3Key)
	}
	return nil, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves gRPC and metrics until ctx is canceled, a signal arrives or
// either server fails. The store is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(gctx) })
	g.Go(func() error { return metrics.NewServer(app.config.MetricsAddr, app.metrics, app.logger).Run(gctx) })

	err := g.Wait()

	if cerr := app.store.Close(context.Background()); cerr != nil {
		app.logger.Error(ctx, "store close error", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
