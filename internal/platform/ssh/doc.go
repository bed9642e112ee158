// Package ssh implements provisioning.RemoteChannel over SSH.
//
// Commands run in a fresh session per call; files are copied over the sftp
// subsystem. Host keys are not verified: the master is a freshly created
// instance whose key cannot be known in advance.
package ssh
