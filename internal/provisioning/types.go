package provisioning

import (
	"errors"
	"fmt"
)

// CreateRequest describes the instance to create.
type CreateRequest struct {
	Name    string
	Region  string
	Size    string
	Image   string
	SSHKeys []string
}

// CreateResponse is the provider's answer to a create request.
type CreateResponse struct {
	StatusCode int
	InstanceID int64
}

// ActionStatus is the state of a provider action.
type ActionStatus string

// Provider action states.
const (
	ActionInProgress ActionStatus = "in-progress"
	ActionCompleted  ActionStatus = "completed"
	ActionErrored    ActionStatus = "errored"
)

// Action is one asynchronous provider operation tied to an instance.
type Action struct {
	ID     int64
	Type   string
	Status ActionStatus
}

// Network is an IPv4 address attached to an instance.
type Network struct {
	IPAddress string
	// Type is "public" or "private"; empty when the provider does not say.
	Type string
}

// Instance is a provisioned compute resource as seen by a listing call.
type Instance struct {
	ID       int64
	Name     string
	Networks []Network
}

// PublicIPv4 returns the first public IPv4 address of the instance.
// Networks without a type count as public.
func (i Instance) PublicIPv4() (string, bool) {
	for _, n := range i.Networks {
		if n.IPAddress == "" {
			continue
		}
		if n.Type == "" || n.Type == "public" {
			return n.IPAddress, true
		}
	}
	return "", false
}

// CommandError reports a remote command that ran and exited non-zero.
type CommandError struct {
	Host     string
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command on %s exited with status %d: %s", e.Host, e.ExitCode, e.Command)
}

// IsCommandError reports whether err is, or wraps, a *CommandError.
func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}
