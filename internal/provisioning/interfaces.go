package provisioning

import "context"

// Provider is the part of a cloud API the orchestrator consumes.
type Provider interface {
	// Name returns the provider identifier used in logs.
	Name() string

	// AcceptedStatus is the HTTP status code the provider answers a
	// well-formed create request with. Anything else is a rejection.
	AcceptedStatus() int

	// CreateInstance requests a new instance. A non-nil response carries the
	// status code even when err is set.
	CreateInstance(ctx context.Context, req CreateRequest) (*CreateResponse, error)

	// ListActions returns the asynchronous actions tied to an instance.
	ListActions(ctx context.Context, instanceID int64) ([]Action, error)

	// ListInstances returns every instance visible to the API key.
	ListInstances(ctx context.Context) ([]Instance, error)
}

// RemoteChannel executes commands on and copies files to a remote host.
//
// Errors of type *CommandError mean the command ran and exited non-zero;
// every other error is a channel failure (unreachable, authentication,
// broken session).
type RemoteChannel interface {
	Execute(ctx context.Context, host, command string) error
	Transfer(ctx context.Context, localPath, host, remotePath string) error
}

// Archiver keeps a copy of a produced artifact outside the run.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte) error
}
