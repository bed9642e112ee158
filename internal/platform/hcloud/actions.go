package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/seedmaster/internal/provisioning"
)

// ListActions implements provisioning.Provider. Actions started by
// CreateInstance are polled by ID; without any, the server status decides.
func (p *Provider) ListActions(ctx context.Context, instanceID int64) ([]provisioning.Action, error) {
	ids := p.rememberedActions(instanceID)
	if len(ids) == 0 {
		return p.serverStatusAction(ctx, instanceID)
	}

	out := make([]provisioning.Action, 0, len(ids))
	for _, id := range ids {
		action, _, err := p.client.Action.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get action %d: %w", id, err)
		}
		if action == nil {
			return nil, fmt.Errorf("action %d not found", id)
		}
		out = append(out, provisioning.Action{
			ID:     action.ID,
			Type:   action.Command,
			Status: actionStatus(action.Status),
		})
	}
	return out, nil
}

// serverStatusAction reports a running server as one completed action.
func (p *Provider) serverStatusAction(ctx context.Context, instanceID int64) ([]provisioning.Action, error) {
	server, _, err := p.client.Server.GetByID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %d: %w", instanceID, err)
	}
	if server == nil {
		return nil, fmt.Errorf("server %d not found", instanceID)
	}

	status := provisioning.ActionInProgress
	if server.Status == hcloud.ServerStatusRunning {
		status = provisioning.ActionCompleted
	}
	return []provisioning.Action{{ID: 0, Type: "server_status", Status: status}}, nil
}

func actionStatus(s hcloud.ActionStatus) provisioning.ActionStatus {
	switch s {
	case hcloud.ActionStatusSuccess:
		return provisioning.ActionCompleted
	case hcloud.ActionStatusError:
		return provisioning.ActionErrored
	default:
		return provisioning.ActionInProgress
	}
}
