package types

import "github.com/angelmondragon/storefront-backend/pkg/pagination"

type SuccessEnvelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ListEnvelope is the success shape for paginated collections.
type ListEnvelope struct {
	Data any             `json:"data"`
	Page pagination.Page `json:"page"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
