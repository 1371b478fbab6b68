package auth

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/magma-studio/atelier/internal/config"
)

// OIDCClient holds the OIDC provider, OAuth2 config, and ID token
// verifier for deployments that delegate operator login to an identity
// provider instead of the static credential pair.
type OIDCClient struct {
	*oidc.Provider
	*oauth2.Config
	*oidc.IDTokenVerifier
}

// NewOIDCClient creates an OIDCClient by running OIDC discovery against
// the configured issuer. It returns (nil, nil) when no issuer is
// configured, which the login handler treats as "static credentials only".
func NewOIDCClient(cfg *config.OIDCConfig) (*OIDCClient, error) {
	if cfg.IssuerURL == "" {
		return nil, nil
	}

	// Use the OIDC discovery endpoint to get the provider configuration.
	provider, err := oidc.NewProvider(context.Background(), cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	// Create an OIDC ID token verifier.
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	// Create a new OAuth2 config with the credentials and endpoints from the provider.
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OIDCClient{
		Provider:        provider,
		Config:          oauth2Config,
		IDTokenVerifier: verifier,
	}, nil
}
