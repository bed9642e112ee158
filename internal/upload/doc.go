// Package upload prepares the session the master's upload integration uses
// to publish simulation results to Google Drive.
//
// The session is created locally from an OAuth2 installed-app client secret
// and shipped to the master next to its configuration. Nothing in this
// package uploads data itself.
package upload
