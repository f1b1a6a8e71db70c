// Package health runs periodic integrity sweeps over the star chain.
package health

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/star-registry/starchain/internal/chain"
	"go.uber.org/zap"
)

var integrityViolations = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "starchain_integrity_violations",
	Help: "Number of integrity violations found by the last periodic chain sweep.",
})

// Config holds integrity sweep configuration.
type Config struct {
	// SweepInterval is the time between full-chain validations.
	// Zero means the default of 5 minutes.
	SweepInterval time.Duration
}

// Checker periodically validates the full chain and reports violations through
// logs and metrics. It never mutates the chain: corruption is reported, not
// repaired.
type Checker struct {
	chain  *chain.Blockchain
	cfg    Config
	logger *zap.Logger
}

// New creates a Checker for bc.
func New(bc *chain.Blockchain, cfg Config, logger *zap.Logger) *Checker {
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	return &Checker{chain: bc, cfg: cfg, logger: logger}
}

// Run sweeps the chain on the configured interval until ctx is cancelled.
// One sweep runs immediately on start.
func (c *Checker) Run(ctx context.Context) {
	c.sweep()

	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Checker) sweep() {
	violations := c.chain.Validate()
	integrityViolations.Set(float64(len(violations)))

	if len(violations) == 0 {
		c.logger.Debug("chain integrity sweep clean", zap.Int("height", c.chain.Height()))
		return
	}
	for _, v := range violations {
		c.logger.Error("chain integrity violation",
			zap.Int("height", v.Height),
			zap.String("kind", string(v.Kind)),
			zap.String("detail", v.Detail),
		)
	}
}
