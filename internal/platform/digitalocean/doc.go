// Package digitalocean implements provisioning.Provider on the DigitalOcean
// API through godo.
//
// Droplet creation is answered with 202 Accepted. Image and SSH key
// references are sent as numeric IDs when they parse as numbers and as
// slugs or fingerprints otherwise.
package digitalocean
