// Package masking redacts credentials and contact details before they reach
// the audit trail.
package masking

import "strings"

const maskToken = "****"

// sensitiveKeys are redacted whole, whatever their value.
var sensitiveKeys = []string{"password", "token", "secret", "authorization", "api_key"}

// MaskSecret redacts a secret while keeping a minimal suffix for auditing.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 8 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskEmail keeps the first letter of the mailbox and the domain:
// "jane@acme.test" becomes "j****@acme.test".
func MaskEmail(value string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(value), "@")
	if !ok || local == "" || domain == "" {
		return MaskSecret(value)
	}
	return local[:1] + maskToken + "@" + domain
}

// Metadata returns a copy of input where credential-like keys are masked and
// email addresses are shortened. Other values pass through unchanged.
func Metadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		out[trimmedKey] = maskValue(strings.ToLower(trimmedKey), value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		switch {
		case isSensitive(key):
			return MaskSecret(cast)
		case key == "email" || strings.HasSuffix(key, "_email"):
			return MaskEmail(cast)
		default:
			return cast
		}
	case map[string]any:
		if isSensitive(key) {
			return maskToken
		}
		return Metadata(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(key, item))
		}
		return out
	default:
		if isSensitive(key) {
			return maskToken
		}
		return value
	}
}

func isSensitive(key string) bool {
	for _, marker := range sensitiveKeys {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
