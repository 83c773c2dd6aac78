package secrets

import "strings"

// sensitivePatterns match output and configuration key names whose values
// must never be printed, even when the engine did not flag them as secret.
var sensitivePatterns = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"API_KEY",
	"PRIVATE_KEY",
	"ACCESS_KEY",
	"CREDENTIAL",
}

// Sensitive reports whether a key names a value that should be masked in
// terminal and structured output. Matching is case-insensitive.
func Sensitive(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
