package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errMasterNameRequired = errors.New("master name is required")
	errMasterNameInvalid  = errors.New("master name must be 1-63 alphanumeric characters, dots or hyphens")
	errAPIKeyRequired     = errors.New("API key is required")
	errSSHKeysRequired    = errors.New("at least one SSH key is required")
	errImageRequired      = errors.New("image is required")
	errSecretRequired     = errors.New("client secret file is required")
	errCountInvalid       = errors.New("worker count must be a non-negative number")
	errAborted            = errors.New("aborted: configuration file already exists")
)
