// Package chaos 为模拟网关注入人工延迟与随机失败。
package chaos

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// Config 描述延迟区间与失败概率。
type Config struct {
	MinDelay  time.Duration
	MaxDelay  time.Duration
	ErrorRate float64
}

// DefaultConfig is 200 to 1200 ms of latency with 10% failures.
var DefaultConfig = Config{
	MinDelay:  200 * time.Millisecond,
	MaxDelay:  1200 * time.Millisecond,
	ErrorRate: 0.10,
}

// Validate checks 0 <= min <= max and 0 <= rate <= 1.
func (c Config) Validate() error {
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return errors.New("chaos: delay must satisfy 0 <= min <= max")
	}
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return errors.New("chaos: error rate must be within [0, 1]")
	}
	return nil
}

// Failure 是路由在模拟失败时返回的 {message, code}。
type Failure struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Injector draws delays and failure rolls from one random source.
// It is safe for concurrent use.
type Injector struct {
	config Config

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Injector.
type Option func(*Injector)

// WithSource replaces the time-seeded random source.
func WithSource(src rand.Source) Option {
	return func(i *Injector) { i.rng = rand.New(src) }
}

// NewInjector 创建注入器，配置非法时返回错误。
func NewInjector(cfg Config, opts ...Option) (*Injector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := uint64(time.Now().UnixNano())
	i := &Injector{
		config: cfg,
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Config returns the injector configuration.
func (i *Injector) Config() Config {
	return i.config
}

// Delay draws a latency uniformly from [MinDelay, MaxDelay].
func (i *Injector) Delay() time.Duration {
	span := i.config.MaxDelay - i.config.MinDelay
	if span <= 0 {
		return i.config.MinDelay
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.config.MinDelay + time.Duration(i.rng.Int64N(int64(span)+1))
}

// ShouldFail rolls an independent failure with probability ErrorRate.
func (i *Injector) ShouldFail() bool {
	switch {
	case i.config.ErrorRate <= 0:
		return false
	case i.config.ErrorRate >= 1:
		return true
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rng.Float64() < i.config.ErrorRate
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
