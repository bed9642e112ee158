// Package naming provides the deterministic names derived from a provisioned
// master: the worker name handed to the remote environment and the object key
// used when archiving its configuration.
package naming
