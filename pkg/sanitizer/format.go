package sanitizer

import "strings"

// NormalizeEmail trims and lower-cases an address so lookups ignore case.
func NormalizeEmail(email string) string {
	return Apply(email, Trim, ToLower)
}

// MaskEmail keeps the first character of the local part and the domain,
// e.g. "j***@example.com". Input without exactly one "@" is fully masked.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(Trim(email), "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}
	first := []rune(local)[0]
	return string(first) + strings.Repeat("*", max(len([]rune(local))-1, 1)) + "@" + domain
}
