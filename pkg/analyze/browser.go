package analyze

import "strings"

// BrowserUnknown is the category for empty or unrecognized user agents.
const BrowserUnknown = "Unknown"

type browserRule struct {
	name   string
	tokens []string
}

// Rule order is the tie-break: Edge UA strings also contain "Chrome" and
// "Safari", Chrome UA strings contain "Safari", and most crawlers
// impersonate one of them.
var browserRules = []browserRule{
	{"Edge", []string{"edg/", "edge/", "edga/", "edgios/"}},
	{"Opera", []string{"opr/", "opera"}},
	{"Chrome", []string{"chrome", "crios"}},
	{"Firefox", []string{"firefox", "fxios"}},
	{"Safari", []string{"safari"}},
	{"Facebook Bot", []string{"facebookexternalhit", "facebook"}},
	{"Bot/Crawler", []string{"bot", "crawler", "spider"}},
}

// BrowserName maps a raw user-agent string to a coarse browser category.
func BrowserName(userAgent string) string {
	if userAgent == "" {
		return BrowserUnknown
	}
	ua := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return rule.name
			}
		}
	}
	return BrowserUnknown
}

// Browsers lists all known categories in rule order, for filter
// validation and display.
func Browsers() []string {
	names := make([]string, 0, len(browserRules)+1)
	for _, rule := range browserRules {
		names = append(names, rule.name)
	}
	return append(names, BrowserUnknown)
}
