package master

import (
	"context"
	"fmt"

	"github.com/imamik/seedmaster/internal/config"
	"github.com/imamik/seedmaster/internal/provisioning"
)

// CreateMaster requests the master instance. Any answer other than the
// provider's accepted status is final; there is no retry.
func (o *Orchestrator) CreateMaster(ctx context.Context, cfg *config.Config) (*provisioning.Instance, error) {
	req := provisioning.CreateRequest{
		Name:    cfg.MasterName,
		Region:  cfg.MasterImage.Region,
		Size:    cfg.MasterImage.Size,
		Image:   cfg.MasterImage.ID.String(),
		SSHKeys: make([]string, 0, len(cfg.MasterImage.SSHKeys)),
	}
	for _, k := range cfg.MasterImage.SSHKeys {
		req.SSHKeys = append(req.SSHKeys, k.String())
	}

	o.observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceCreating,
		Phase:    provisioning.PhaseCreate,
		Resource: req.Name,
		Message:  "requesting instance",
		Fields: map[string]string{
			"provider": o.provider.Name(),
			"region":   req.Region,
			"size":     req.Size,
		},
	})

	resp, err := o.provider.CreateInstance(ctx, req)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: status %d: %w", ErrCreateRejected, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrCreateRejected, err)
	}
	if resp.StatusCode != o.provider.AcceptedStatus() {
		return nil, fmt.Errorf("%w: %s answered status %d, expected %d",
			ErrCreateRejected, o.provider.Name(), resp.StatusCode, o.provider.AcceptedStatus())
	}

	o.log.Info("instance accepted", "name", req.Name, "id", resp.InstanceID)
	o.observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceCreated,
		Phase:    provisioning.PhaseCreate,
		Resource: req.Name,
		Message:  "instance accepted",
		Fields:   map[string]string{"id": fmt.Sprintf("%d", resp.InstanceID)},
	})

	return &provisioning.Instance{ID: resp.InstanceID, Name: req.Name}, nil
}
