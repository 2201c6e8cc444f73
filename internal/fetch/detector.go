package fetch

import "strings"

// challengeMarkers are body fragments that identify an anti-bot
// interstitial in statically fetched HTML.
var challengeMarkers = []string{
	"cf-challenge",
	"cf_chl_opt",
	"challenges.cloudflare.com/turnstile",
	"cf-turnstile",
	"just a moment",
	"checking your browser",
	"ddos protection",
}

// renderMarkers suggest the page builds its content client-side or defers
// it behind lazy loading, so a static fetch will have missed it.
var renderMarkers = []string{
	"data-src=",
	"lazyload",
	"<div id=\"root\"></div>",
	"<div id=\"app\"></div>",
}

// NeedsBrowser reports whether statically fetched HTML must be refetched
// through the browser session: either a challenge page came back, or the
// markup shows client-side rendering the static fetch cannot follow.
func NeedsBrowser(html string) bool {
	lower := strings.ToLower(html)

	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, marker := range renderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	// A near-empty body with a noscript warning is an SPA shell.
	if strings.Contains(lower, "<noscript>") && strings.Contains(lower, "javascript") {
		return true
	}

	return false
}
