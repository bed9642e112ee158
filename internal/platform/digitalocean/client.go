package digitalocean

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/digitalocean/godo"

	"github.com/imamik/seedmaster/internal/provisioning"
	"github.com/imamik/seedmaster/internal/util/labels"
)

const perPage = 200

// Provider implements provisioning.Provider for DigitalOcean.
type Provider struct {
	client *godo.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithGodoClient sets a custom godo client (useful for testing).
func WithGodoClient(c *godo.Client) Option {
	return func(p *Provider) {
		p.client = c
	}
}

// NewProvider creates a Provider authenticating with token.
func NewProvider(token string, opts ...Option) *Provider {
	p := &Provider{client: godo.NewFromToken(token)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements provisioning.Provider.
func (p *Provider) Name() string {
	return "digitalocean"
}

// AcceptedStatus implements provisioning.Provider.
func (p *Provider) AcceptedStatus() int {
	return http.StatusAccepted
}

// CreateInstance implements provisioning.Provider.
func (p *Provider) CreateInstance(ctx context.Context, req provisioning.CreateRequest) (*provisioning.CreateResponse, error) {
	createReq := &godo.DropletCreateRequest{
		Name:   req.Name,
		Region: req.Region,
		Size:   req.Size,
		Image:  imageRef(req.Image),
		Tags:   labels.ForMaster(req.Name).Tags(),
	}
	for _, k := range req.SSHKeys {
		createReq.SSHKeys = append(createReq.SSHKeys, sshKeyRef(k))
	}

	droplet, resp, err := p.client.Droplets.Create(ctx, createReq)
	out := &provisioning.CreateResponse{}
	if resp != nil && resp.Response != nil {
		out.StatusCode = resp.StatusCode
	}
	if err != nil {
		if out.StatusCode == 0 {
			return nil, fmt.Errorf("failed to create droplet: %w", err)
		}
		return out, fmt.Errorf("failed to create droplet: %w", err)
	}
	if droplet == nil {
		return out, fmt.Errorf("create droplet %s: empty response", req.Name)
	}

	out.InstanceID = int64(droplet.ID)
	return out, nil
}

// ListActions implements provisioning.Provider.
func (p *Provider) ListActions(ctx context.Context, instanceID int64) ([]provisioning.Action, error) {
	var out []provisioning.Action
	opt := &godo.ListOptions{Page: 1, PerPage: perPage}

	for {
		actions, resp, err := p.client.Droplets.Actions(ctx, int(instanceID), opt)
		if err != nil {
			return nil, fmt.Errorf("failed to list actions of droplet %d: %w", instanceID, err)
		}
		for _, a := range actions {
			out = append(out, provisioning.Action{
				ID:     int64(a.ID),
				Type:   a.Type,
				Status: actionStatus(a.Status),
			})
		}

		next, ok := nextPage(resp)
		if !ok {
			return out, nil
		}
		opt.Page = next
	}
}

// ListInstances implements provisioning.Provider.
func (p *Provider) ListInstances(ctx context.Context) ([]provisioning.Instance, error) {
	var out []provisioning.Instance
	opt := &godo.ListOptions{Page: 1, PerPage: perPage}

	for {
		droplets, resp, err := p.client.Droplets.List(ctx, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to list droplets: %w", err)
		}
		for _, d := range droplets {
			out = append(out, toInstance(d))
		}

		next, ok := nextPage(resp)
		if !ok {
			return out, nil
		}
		opt.Page = next
	}
}

func toInstance(d godo.Droplet) provisioning.Instance {
	inst := provisioning.Instance{ID: int64(d.ID), Name: d.Name}
	if d.Networks == nil {
		return inst
	}
	for _, n := range d.Networks.V4 {
		inst.Networks = append(inst.Networks, provisioning.Network{IPAddress: n.IPAddress, Type: n.Type})
	}
	return inst
}

func nextPage(resp *godo.Response) (int, bool) {
	if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
		return 0, false
	}
	current, err := resp.Links.CurrentPage()
	if err != nil {
		return 0, false
	}
	return current + 1, true
}

func actionStatus(s string) provisioning.ActionStatus {
	switch s {
	case godo.ActionCompleted:
		return provisioning.ActionCompleted
	case "errored":
		return provisioning.ActionErrored
	default:
		return provisioning.ActionInProgress
	}
}

func imageRef(ref string) godo.DropletCreateImage {
	if id, err := strconv.Atoi(ref); err == nil {
		return godo.DropletCreateImage{ID: id}
	}
	return godo.DropletCreateImage{Slug: ref}
}

func sshKeyRef(ref string) godo.DropletCreateSSHKey {
	if id, err := strconv.Atoi(ref); err == nil {
		return godo.DropletCreateSSHKey{ID: id}
	}
	return godo.DropletCreateSSHKey{Fingerprint: ref}
}
