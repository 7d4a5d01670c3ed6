package identity

import (
	"context"
	"strings"

	"github.com/Geek-Mradul/mintern/internal/database"
)

// Assertion is what an external identity provider vouches for after its own
// handshake has been verified.
type Assertion struct {
	Email string
	Name  string
}

type FederatedVerifier struct {
	store  CredentialStore
	domain string
}

// NewFederatedVerifier accepts only emails ending with domain, compared as a
// literal, case-sensitive suffix such as "@hyderabad.bits-pilani.ac.in".
func NewFederatedVerifier(store CredentialStore, domain string) *FederatedVerifier {
	return &FederatedVerifier{store: store, domain: domain}
}

func (v *FederatedVerifier) Domain() string {
	return v.domain
}

// Verify gates the assertion on the domain allowlist and then creates or
// refreshes the local account. Nothing is written for a rejected assertion.
func (v *FederatedVerifier) Verify(ctx context.Context, a Assertion) (*database.User, error) {
	if a.Email == "" {
		return nil, ErrMissingEmail
	}
	if v.domain == "" || !strings.HasSuffix(a.Email, v.domain) {
		return nil, ErrDomainRejected
	}

	name := strings.TrimSpace(a.Name)
	if name == "" {
		name, _, _ = strings.Cut(a.Email, "@")
	}

	u, err := v.store.UpsertFederated(ctx, a.Email, name)
	if err != nil {
		return nil, dependency("upsert federated user", err)
	}
	return u, nil
}
