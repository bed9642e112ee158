// Package labels provides consistent labeling of provisioned masters.
//
// Hetzner Cloud servers carry the labels as key/value pairs, DigitalOcean
// droplets carry them as "key:value" tags.
package labels
