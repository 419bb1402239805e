package stores

import (
	"regexp"
	"strings"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSubdomain turns a requested subdomain (or store name) into a DNS-safe label.
// Example: "Pizza  da Nonna!" -> "pizza-da-nonna"
func MakeSubdomain(raw string) string {
	base := strings.ToLower(strings.TrimSpace(raw))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if len(base) > 63 {
		base = strings.TrimRight(base[:63], "-")
	}
	return base
}

// PublicURL builds the storefront URL for a subdomain.
// Example: "pizza-da-nonna" -> "https://pizza-da-nonna.example.com"
func PublicURL(subdomain, baseDomain string) string {
	return "https://" + subdomain + "." + baseDomain
}
