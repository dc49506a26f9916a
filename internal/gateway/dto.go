package gateway

import (
	"github.com/aingelmo/HCGateway-dashboard/internal/domain/validate"
)

// Wire shapes for the HCGateway v2 API.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// tokenResponse is returned by both /login and /refresh.
type tokenResponse struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
	Expiry  string `json:"expiry"`
}

// fetchRequest wraps the mongo-style query filter for /fetch/<method>.
type fetchRequest struct {
	Queries map[string]any `json:"queries"`
}

type fetchResponse struct {
	Data []validate.RawRecord `json:"data"`
}
