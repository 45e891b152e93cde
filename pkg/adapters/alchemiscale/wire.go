package alchemiscale

import (
	"encoding/json"

	"github.com/aretw0/asfe/pkg/network"
)

// Wire types of the service's JSON API.

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CreateNetworkRequest struct {
	Network *network.Document `json:"network"`
	Scope   string            `json:"scope"`
}

type SetTaskStatusRequest struct {
	Tasks  []string `json:"tasks"`
	Status string   `json:"status"`
}

// ErrorResponse is the body of a non-2xx response.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
