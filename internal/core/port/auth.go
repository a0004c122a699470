package port

import (
	"filedrop/internal/core/domain"
	"net/http"
)

// IdentityResolver extracts the caller identity from a request
type IdentityResolver interface {
	Resolve(r *http.Request) (*domain.Identity, error)
}
