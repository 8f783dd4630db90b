package logger

import "strings"

// SanitizedUsername masks a username for logging, keeping only the first
// character so failed-login logs don't become a credential list.
func SanitizedUsername(username string) string {
	if username == "" {
		return "[empty]"
	}
	if len(username) == 1 {
		return "*"
	}
	return string(username[0]) + strings.Repeat("*", len(username)-1)
}

var sensitiveParams = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
	"api_key":  true,
	"apikey":   true,
	"auth":     true,
	"session":  true,
}

// SanitizeQueryString reports whether a raw query string contains
// sensitive parameters and should be redacted wholesale from logs.
func SanitizeQueryString(rawQuery string) bool {
	query := strings.ToLower(rawQuery)
	for param := range sensitiveParams {
		if strings.Contains(query, param+"=") {
			return true
		}
	}
	return false
}
