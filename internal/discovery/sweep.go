package discovery

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when no host in the subnet answers the probe.
var ErrNotFound = errors.New("companion API not found on local network")

const (
	DefaultPort        = 31010
	DefaultConcurrency = 50
	DefaultTimeout     = 2 * time.Second
)

// Prober decides whether baseURL is the companion API.
type Prober interface {
	Probe(ctx context.Context, baseURL string) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, baseURL string) bool

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, baseURL string) bool {
	return f(ctx, baseURL)
}

// Sweeper probes every host of a /24 network.
type Sweeper struct {
	Port        int
	Concurrency int
	Timeout     time.Duration
	Prober      Prober
	Logger      *zap.Logger
}

// Sweep returns the base URL of the first host that passes the probe.
func (s Sweeper) Sweep(ctx context.Context, subnet string) (string, error) {
	if s.Prober == nil {
		return "", errors.New("sweeper has no prober")
	}
	prefix, err := ParseSubnet(subnet)
	if err != nil {
		return "", err
	}
	port := s.Port
	if port <= 0 {
		port = DefaultPort
	}
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(sweepCtx)
	g.SetLimit(limit)

	var (
		once  sync.Once
		found string
	)
	started := time.Now()
	logger.Info("scanning network", zap.String("subnet", prefix+".0/24"), zap.Int("port", port))

	for _, host := range Hosts(prefix) {
		if gctx.Err() != nil {
			break
		}
		baseURL := "http://" + net.JoinHostPort(host, strconv.Itoa(port))
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			probeCtx, probeCancel := context.WithTimeout(gctx, timeout)
			defer probeCancel()
			if s.Prober.Probe(probeCtx, baseURL) {
				once.Do(func() {
					found = baseURL
					cancel()
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if found != "" {
		logger.Info("companion API found", zap.String("base_url", found), zap.Duration("elapsed", time.Since(started)))
		return found, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger.Info("scan finished without a match", zap.Duration("elapsed", time.Since(started)))
	return "", ErrNotFound
}
