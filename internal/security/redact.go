// Package security masks advisory API keys before they reach logs or
// terminal output.
package security

import (
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// secretPatterns match the credential shapes the advisory backends use.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|key|x-goog-api-key|authorization|bearer)([=:\s]+["']?)([A-Za-z0-9_\-\.]{16,})`),
	regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{20,}`), // OpenAI
	regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{30,}`), // Google
}

// sensitiveFields are log field names whose values are always masked.
var sensitiveFields = map[string]bool{
	"api_key":     true,
	"apikey":      true,
	"key":         true,
	"secret":      true,
	"token":       true,
	"credentials": true,
}

// MaskCredential keeps the first and last four characters of long values.
func MaskCredential(value string) string {
	switch n := len(value); {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return value[:2] + strings.Repeat("*", n-2)
	default:
		return value[:4] + strings.Repeat("*", n-8) + value[n-4:]
	}
}

// ContainsSecret reports whether s looks like it carries a credential.
func ContainsSecret(s string) bool {
	for _, p := range secretPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact masks every credential found in s.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllStringFunc(s, func(match string) string {
			sub := p.FindStringSubmatch(match)
			if len(sub) == 4 {
				return sub[1] + sub[2] + MaskCredential(sub[3])
			}
			return MaskCredential(match)
		})
	}
	return s
}

// RedactError returns err with credentials masked from its message. The
// result no longer unwraps to the original chain, so callers keep the
// original for errors.Is checks.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !ContainsSecret(msg) {
		return err
	}
	return errors.New(Redact(msg))
}

// Str adds a string field to e, masking the value when the field name is
// sensitive or the value carries a credential.
func Str(e *zerolog.Event, key, val string) *zerolog.Event {
	if sensitiveFields[strings.ToLower(key)] {
		return e.Str(key, MaskCredential(val))
	}
	return e.Str(key, Redact(val))
}
