// Package security checks and masks opaque credentials. Tokens are never
// interpreted, only shape-checked.
package security

import (
	"regexp"
	"strings"
)

var (
	keyPattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	unsafePattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	hexPattern    = regexp.MustCompile(`^[a-fA-F0-9]+$`)
)

// APIKeyValidator provides validation and handling of API keys
type APIKeyValidator struct {
	minLength int
	maxLength int
}

func NewAPIKeyValidator() *APIKeyValidator {
	return &APIKeyValidator{
		minLength: 8,
		maxLength: 128,
	}
}

// ValidateAPIKey validates API key format and length
func (v *APIKeyValidator) ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	if len(apiKey) < v.minLength || len(apiKey) > v.maxLength {
		return false
	}

	return keyPattern.MatchString(apiKey)
}

// SanitizeAPIKey trims whitespace and strips characters that could be used
// for URL or header injection.
func (v *APIKeyValidator) SanitizeAPIKey(apiKey string) string {
	return unsafePattern.ReplaceAllString(strings.TrimSpace(apiKey), "")
}

// MaskAPIKey creates a masked version for logging (shows only first/last few chars)
func (v *APIKeyValidator) MaskAPIKey(apiKey string) string {
	if len(apiKey) == 0 {
		return "[empty]"
	}

	if len(apiKey) <= 8 {
		return "[***]"
	}

	return apiKey[:3] + "..." + apiKey[len(apiKey)-3:]
}

func (v *APIKeyValidator) IsValidAllDebridKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) {
		return false
	}
	return len(apiKey) >= 16 && len(apiKey) <= 40
}

// IsValidRealDebridKey accepts private API tokens, which are 52 upper-case
// alphanumerics, and longer OAuth access tokens.
func (v *APIKeyValidator) IsValidRealDebridKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) {
		return false
	}
	return len(apiKey) >= 32
}

func (v *APIKeyValidator) IsValidTMDBKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) {
		return false
	}
	return len(apiKey) == 32 && hexPattern.MatchString(apiKey)
}

// IsValidStoreToken dispatches on the debrid provider id.
func (v *APIKeyValidator) IsValidStoreToken(provider, token string) bool {
	switch provider {
	case "alldebrid":
		return v.IsValidAllDebridKey(token)
	case "realdebrid":
		return v.IsValidRealDebridKey(token)
	default:
		return v.ValidateAPIKey(token)
	}
}
