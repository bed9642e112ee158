// Package provisioning holds the contracts the master orchestrator consumes
// and the observer it reports progress through.
//
// The orchestrator itself lives in the master subpackage. Cloud backends
// (internal/platform/digitalocean, internal/platform/hcloud) implement
// [Provider]; internal/platform/ssh implements [RemoteChannel].
package provisioning
