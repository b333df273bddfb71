package validation

import "regexp"

// Provider scope names observed in the wild are lowercase tokens such as
// "ads_read", "pages_show_list", "read_products", or full Google URLs like
// "https://www.googleapis.com/auth/adwords". The pattern stays permissive:
// - start with a letter or digit
// - middle chars may include [a-z0-9:_/.-]
// - length 1..128
// - excludes whitespace, commas and semicolons explicitly (those are
//   scope-list delimiters and must never appear inside a single scope).
var scopeNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9:_/\.-]{0,127}$`)

// ValidScopeName reports whether the scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidScopes reports whether every scope in the list is valid.
func ValidScopes(scopes []string) bool {
	for _, s := range scopes {
		if !ValidScopeName(s) {
			return false
		}
	}
	return true
}

var platformRe = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// ValidPlatformID reports whether a platform identifier is well formed.
func ValidPlatformID(p string) bool {
	return platformRe.MatchString(p)
}
