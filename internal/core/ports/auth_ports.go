package ports

import (
	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

// IdentityVerifier turns a bearer token issued by the auth collaborator
// into a verified identity.
type IdentityVerifier interface {
	Verify(token string) (domain.Identity, error)
}
