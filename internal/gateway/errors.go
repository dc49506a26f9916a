package gateway

import "errors"

// Sentinel kinds for gateway errors.
var (
	// ErrAuth marks rejected credentials or an unrecoverable session.
	ErrAuth = errors.New("gateway authentication failed")

	// ErrAPI marks network failures and unexpected upstream responses.
	ErrAPI = errors.New("gateway request failed")
)
