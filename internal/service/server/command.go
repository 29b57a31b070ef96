package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/grpc"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	"github.com/oshokin/catpoint/internal/api/http/ops"
	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/version"
)

// serverName names the process in logs and outgoing requests.
const serverName = "catpoint-server"

// Options controls the catpoint-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the state file of the file store.
	StateFile string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server, and the ops HTTP server when configured, and
// blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyLogSettings(settings)

	ctx = logger.WithName(ctx, serverName)
	logger.InfoKV(ctx, "Starting", version.LogFields()...)

	if opts.StateFile != "" {
		settings.Store.StateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	parts, err := buildComponents(ctx, settings)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer func() {
		if err := parts.Close(); err != nil {
			logger.ErrorKV(ctx, "Failed to release resources", "error", err)
		}
	}()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(api.AuditUnaryInterceptor),
		grpc.ChainStreamInterceptor(api.AuditStreamInterceptor),
	)
	securityServer := api.NewServer(parts.guard)
	api.RegisterSecurityServiceServer(grpcServer, securityServer)

	logger.InfoKV(ctx, "Security server listening",
		"listen_address", listenAddress,
		"store", settings.Store.Backend,
		"classifier", settings.Classifier.Backend)

	serveErrors := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrors <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()

	var httpServer *http.Server

	if settings.HTTPAddress != "" {
		httpServer = &http.Server{
			Addr:              settings.HTTPAddress,
			Handler:           ops.NewRouter(parts.guard, parts.registry),
			ReadHeaderTimeout: settings.Timeout,
		}

		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErrors <- fmt.Errorf("serve ops HTTP: %w", err)
			}
		}()

		logger.InfoKV(ctx, "Ops endpoint listening", "http_address", settings.HTTPAddress)
	}

	var runErr error

	select {
	case <-ctx.Done():
	case runErr = <-serveErrors:
		logger.ErrorKV(ctx, "Server failed", "error", runErr)
	}

	logger.Info(ctx, "Shutting down")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.Timeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Ops endpoint shutdown failed", "error", err)
		}
	}

	securityServer.Stop()
	grpcServer.GracefulStop()
	logger.Info(ctx, "GRPC server stopped")

	return runErr
}

// applyLogSettings switches the global logger to the configured level and encoding.
func applyLogSettings(settings *config.Config) {
	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if settings.LogEncoding != "" {
		logger.SetLogger(logger.New(nil, settings.LogEncoding))
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
