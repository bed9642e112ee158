package master

import (
	"context"
	"fmt"

	"github.com/imamik/seedmaster/internal/provisioning"
	"github.com/imamik/seedmaster/internal/util/retry"
)

// AwaitReady polls the instance's actions until every one of them
// completed. After a response with unfinished actions it pauses once and
// polls again. A failed poll call counts as unfinished; an errored action
// ends the wait with ErrActionFailed.
func (o *Orchestrator) AwaitReady(ctx context.Context, inst *provisioning.Instance) (*provisioning.Instance, error) {
	log := o.log.WithValues("instance", inst.ID)

	err := o.pollPolicy.Poll(ctx, func(ctx context.Context, attempt int) (bool, error) {
		actions, err := o.provider.ListActions(ctx, inst.ID)
		o.metrics.RecordPoll()
		if err != nil {
			log.Info("polling actions failed", "attempt", attempt, "error", err.Error())
			o.announceRetry(attempt, "action poll failed")
			return false, err
		}

		pending := 0
		for _, a := range actions {
			switch a.Status {
			case provisioning.ActionCompleted:
			case provisioning.ActionErrored:
				return false, retry.Fatal(fmt.Errorf("%w: action %d (%s) on instance %d",
					ErrActionFailed, a.ID, a.Type, inst.ID))
			default:
				pending++
			}
		}

		log.V(1).Info("polled actions", "attempt", attempt, "total", len(actions), "pending", pending)
		if pending == 0 {
			return true, nil
		}
		o.announceRetry(attempt, fmt.Sprintf("%d of %d actions pending", pending, len(actions)))
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("waiting for instance %d: %w", inst.ID, err)
	}
	return inst, nil
}

func (o *Orchestrator) announceRetry(attempt int, reason string) {
	if !o.willRetry(o.pollPolicy.MaxAttempts, attempt) {
		return
	}
	provisioning.LogRetry(o.observer, provisioning.PhaseWait, attempt, o.pollPolicy.Interval, reason)
}
