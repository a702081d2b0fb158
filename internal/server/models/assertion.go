package models

// Identity providers with a known username rule.
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// Assertion is a verified identity claim handed over by the identity provider
// callback. Signatures have already been checked upstream.
type Assertion struct {
	Provider   string
	ExternalID string
	Email      string
	RawName    string
	// Login is the provider's public handle, when it has one (GitHub "login").
	Login string
}
