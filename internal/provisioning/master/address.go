package master

import (
	"context"
	"fmt"

	"github.com/imamik/seedmaster/internal/provisioning"
)

// ResolveAddress finds the instance in the provider listing and returns its
// first public IPv4 address.
func (o *Orchestrator) ResolveAddress(ctx context.Context, inst *provisioning.Instance) (string, error) {
	instances, err := o.provider.ListInstances(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list instances: %w", err)
	}

	for _, candidate := range instances {
		if candidate.ID != inst.ID {
			continue
		}
		addr, ok := candidate.PublicIPv4()
		if !ok {
			return "", fmt.Errorf("%w: instance %d", ErrNoAddress, inst.ID)
		}
		o.log.Info("resolved master address", "instance", inst.ID, "address", addr)
		return addr, nil
	}

	return "", fmt.Errorf("%w: no instance with ID %d among %d listed", ErrInstanceNotFound, inst.ID, len(instances))
}
