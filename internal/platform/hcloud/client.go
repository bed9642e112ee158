package hcloud

import (
	"net/http"
	"sync"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Provider implements provisioning.Provider for Hetzner Cloud.
type Provider struct {
	client *hcloud.Client

	retryMaxAttempts  int
	retryInitialDelay time.Duration

	mu      sync.Mutex
	actions map[int64][]int64
}

// Option configures a Provider.
type Option func(*Provider)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) Option {
	return func(p *Provider) {
		p.client = hc
	}
}

// WithRetry sets how lookups are retried on rate limits and locks.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(p *Provider) {
		p.retryMaxAttempts = maxAttempts
		p.retryInitialDelay = initialDelay
	}
}

// NewProvider creates a Provider authenticating with token.
func NewProvider(token string, opts ...Option) *Provider {
	p := &Provider{
		client:            hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("seedmaster", "")),
		retryMaxAttempts:  5,
		retryInitialDelay: time.Second,
		actions:           make(map[int64][]int64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements provisioning.Provider.
func (p *Provider) Name() string {
	return "hetzner"
}

// AcceptedStatus implements provisioning.Provider.
func (p *Provider) AcceptedStatus() int {
	return http.StatusCreated
}

func (p *Provider) rememberActions(serverID int64, actions ...*hcloud.Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range actions {
		if a != nil {
			p.actions[serverID] = append(p.actions[serverID], a.ID)
		}
	}
}

func (p *Provider) rememberedActions(serverID int64) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, len(p.actions[serverID]))
	copy(ids, p.actions[serverID])
	return ids
}
