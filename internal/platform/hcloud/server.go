package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/seedmaster/internal/provisioning"
	"github.com/imamik/seedmaster/internal/util/async"
	"github.com/imamik/seedmaster/internal/util/labels"
	"github.com/imamik/seedmaster/internal/util/retry"
)

// CreateInstance implements provisioning.Provider.
func (p *Provider) CreateInstance(ctx context.Context, req provisioning.CreateRequest) (*provisioning.CreateResponse, error) {
	opts, err := p.buildServerCreateOpts(ctx, req)
	if err != nil {
		return nil, err
	}

	result, resp, err := p.client.Server.Create(ctx, opts)
	out := &provisioning.CreateResponse{}
	if resp != nil && resp.Response != nil {
		out.StatusCode = resp.StatusCode
	}
	if err != nil {
		if out.StatusCode == 0 {
			return nil, fmt.Errorf("failed to create server: %w", err)
		}
		return out, fmt.Errorf("failed to create server: %w", err)
	}
	if result.Server == nil {
		return out, fmt.Errorf("create server %s: empty response", req.Name)
	}

	out.InstanceID = result.Server.ID
	p.rememberActions(result.Server.ID, result.Action)
	p.rememberActions(result.Server.ID, result.NextActions...)
	return out, nil
}

// buildServerCreateOpts resolves all references of req concurrently.
func (p *Provider) buildServerCreateOpts(ctx context.Context, req provisioning.CreateRequest) (hcloud.ServerCreateOpts, error) {
	opts := hcloud.ServerCreateOpts{
		Name:    req.Name,
		SSHKeys: make([]*hcloud.SSHKey, len(req.SSHKeys)),
		Labels:  labels.ForMaster(req.Name).Build(),
	}

	tasks := []async.Task{
		{Name: "server type", Func: func(ctx context.Context) (err error) {
			opts.ServerType, err = lookup(ctx, p, "server type", req.Size, p.client.ServerType.Get)
			return err
		}},
		{Name: "image", Func: func(ctx context.Context) (err error) {
			opts.Image, err = lookup(ctx, p, "image", req.Image, p.client.Image.Get) //nolint:staticcheck
			return err
		}},
	}
	if req.Region != "" {
		tasks = append(tasks, async.Task{Name: "location", Func: func(ctx context.Context) (err error) {
			opts.Location, err = lookup(ctx, p, "location", req.Region, p.client.Location.Get)
			return err
		}})
	}
	for i, ref := range req.SSHKeys {
		tasks = append(tasks, async.Task{Name: "ssh key " + ref, Func: func(ctx context.Context) (err error) {
			opts.SSHKeys[i], err = lookup(ctx, p, "ssh key", ref, p.client.SSHKey.Get)
			return err
		}})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to resolve create request: %w", err)
	}
	return opts, nil
}

// lookup resolves a name or ID, retrying on locks and rate limits.
func lookup[T any](ctx context.Context, p *Provider, kind, ref string, get func(context.Context, string) (*T, *hcloud.Response, error)) (*T, error) {
	var found *T
	err := retry.NewBackoff(p.retryMaxAttempts, p.retryInitialDelay).Do(ctx, func() error {
		obj, _, err := get(ctx, ref)
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return retry.Fatal(err)
		}
		found = obj
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", kind, ref, err)
	}
	if found == nil {
		return nil, fmt.Errorf("%s not found: %s", kind, ref)
	}
	return found, nil
}

// ListInstances implements provisioning.Provider.
func (p *Provider) ListInstances(ctx context.Context) ([]provisioning.Instance, error) {
	servers, err := p.client.Server.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	out := make([]provisioning.Instance, 0, len(servers))
	for _, s := range servers {
		out = append(out, toInstance(s))
	}
	return out, nil
}

func toInstance(s *hcloud.Server) provisioning.Instance {
	inst := provisioning.Instance{ID: s.ID, Name: s.Name}
	if ip := ServerIPv4(s); ip != "" {
		inst.Networks = append(inst.Networks, provisioning.Network{IPAddress: ip, Type: "public"})
	}
	for _, pn := range s.PrivateNet {
		if pn.IP != nil && pn.IP.To4() != nil {
			inst.Networks = append(inst.Networks, provisioning.Network{IPAddress: pn.IP.String(), Type: "private"})
		}
	}
	return inst
}

// ServerIPv4 extracts the public IPv4 address from a server, or empty string if not set.
func ServerIPv4(s *hcloud.Server) string {
	if s != nil && s.PublicNet.IPv4.IP != nil && !s.PublicNet.IPv4.IP.IsUnspecified() {
		return s.PublicNet.IPv4.IP.String()
	}
	return ""
}
