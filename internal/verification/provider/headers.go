package provider

import (
	"net/http"

	"idflow/internal/platform/config"
)

// Header names the provider expects.
const (
	HeaderAPIKey     = "x-api-key"
	HeaderAPIVersion = "api-version"
	HeaderHardwareID = "X-Incode-Hardware-Id"
)

// Credential selects which identity a call is made with: the service's admin
// token or a session token handed out at start.
type Credential struct {
	token string
	admin bool
}

// Admin is the service-level credential.
func Admin() Credential { return Credential{admin: true} }

// SessionToken authenticates as the session that owns token.
func SessionToken(token string) Credential { return Credential{token: token} }

// IsAdmin reports whether c is the admin credential.
func (c Credential) IsAdmin() bool { return c.admin }

// Headers builds the header sets for provider calls. Every set carries the
// API key and version.
type Headers struct {
	apiKey     string
	apiVersion string
	adminToken string
}

func NewHeaders(cfg config.ProviderConfig) Headers {
	return Headers{apiKey: cfg.APIKey, apiVersion: cfg.APIVersion, adminToken: cfg.AdminToken}
}

// Default returns the headers sent on unauthenticated calls.
func (h Headers) Default() http.Header {
	out := http.Header{}
	out.Set("Content-Type", "application/json")
	out.Set(HeaderAPIKey, h.apiKey)
	out.Set(HeaderAPIVersion, h.apiVersion)
	return out
}

// For returns the headers for the given credential.
func (h Headers) For(c Credential) http.Header {
	out := h.Default()
	if c.IsAdmin() {
		out.Set(HeaderHardwareID, h.adminToken)
	} else {
		out.Set(HeaderHardwareID, c.token)
	}
	return out
}
