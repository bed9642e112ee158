// Package master provisions the master instance and bootstraps the remote
// environment on it.
//
// A run moves through fixed phases:
//
//  1. create: request the instance; anything but the provider's accepted
//     status ends the run.
//  2. wait: poll the instance's actions until all of them completed.
//  3. resolve: find the instance in the listing and take its public IPv4.
//  4. artifact: derive the downstream configuration and write it once.
//  5. archive: optionally keep a copy of the artifact in object storage.
//  6. bootstrap: clone, transfer, launch; the whole sequence is retried after
//     a back-off when the remote channel fails.
//
// Both waiting loops are driven by injected retry policies so tests can count
// pauses instead of sleeping.
package master
