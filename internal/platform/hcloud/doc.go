// Package hcloud implements provisioning.Provider on the Hetzner Cloud API.
//
// Hetzner answers a server create request with 201 Created and returns the
// actions started by it (the create action plus follow-ups such as the
// initial power-on). The provider remembers those action IDs per server and
// polls them by ID; a server created elsewhere falls back to its status.
//
// Lookups of server type, image, location and SSH keys accept names or
// numeric IDs, as the configuration allows both.
package hcloud
