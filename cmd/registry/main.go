// Command registry runs the starchain HTTP registry: an in-memory, append-only
// star chain behind a signature-gated submission API.
//
// The chain is volatile. Every process start rebuilds it empty and seeds the
// genesis block before the listener comes up.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/star-registry/starchain/internal/chain"
	"github.com/star-registry/starchain/internal/events"
	"github.com/star-registry/starchain/internal/health"
	"github.com/star-registry/starchain/internal/identity"
	"github.com/star-registry/starchain/internal/registry/handler"
	"github.com/star-registry/starchain/internal/signature"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("registry exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	viper.SetConfigName("starchain")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("registry.port", 8000)
	viper.SetDefault("registry.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("registry.rate_limit_rps", 20)
	viper.SetDefault("registry.rate_limit_burst", 40)
	viper.SetDefault("registry.admin_secret", "")
	viper.SetDefault("registry.admin_token_ttl", "1h")
	viper.SetDefault("registry.base_url", "http://localhost:8000")
	viper.SetDefault("chain.network", "mainnet")
	viper.SetDefault("chain.sweep_interval", "5m")

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	params, err := networkParams(viper.GetString("chain.network"))
	if err != nil {
		return err
	}

	// ── Chain ────────────────────────────────────────────────────────────────
	verifier := signature.NewVerifier(params)
	bc := chain.New(verifier.Verify, logger)
	if err := bc.Initialize(); err != nil {
		return fmt.Errorf("initialize chain: %w", err)
	}
	handler.RecordChainHeight(bc.Height())

	hub := events.NewHub(logger)

	// Periodic integrity sweeps, stopped with the server.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	checker := health.New(bc, health.Config{
		SweepInterval: viper.GetDuration("chain.sweep_interval"),
	}, logger)
	go checker.Run(sweepCtx)

	// ── HTTP server ──────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.PrometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     viper.GetStringSlice("registry.cors_origins"),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.HealthRoute(r, bc)
	handler.MetricsRoute(r)

	v1 := r.Group("/api/v1")
	v1.Use(handler.RateLimiter(
		viper.GetInt("registry.rate_limit_rps"),
		viper.GetInt("registry.rate_limit_burst"),
	))

	handler.NewChallengeHandler(logger).Register(v1)
	handler.NewStarHandler(bc, hub, logger).Register(v1)
	handler.NewChainHandler(bc, logger).Register(v1)
	handler.NewStreamHandler(hub, logger).Register(v1)

	if secret := viper.GetString("registry.admin_secret"); secret != "" {
		tokens, err := identity.NewAdminTokenIssuer(
			secret,
			viper.GetString("registry.base_url"),
			viper.GetDuration("registry.admin_token_ttl"),
		)
		if err != nil {
			return fmt.Errorf("set up admin tokens: %w", err)
		}
		handler.NewAdminHandler(tokens, bc, logger).Register(v1)
	} else {
		logger.Warn("admin secret not configured, admin API disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("registry.port")),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("registry listening",
			zap.String("addr", srv.Addr),
			zap.String("network", params.Name),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// networkParams maps the configured network name to chain parameters for
// address verification.
func networkParams(name string) (*chaincfg.Params, error) {
	switch name {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}
