package extract

import (
	"net/url"
	"strings"
)

// Category is the classification bucket a discovered URL lands in.
type Category string

const (
	CategoryNone  Category = "none"
	CategoryVideo Category = "video"
	CategoryZip   Category = "zip"
	CategoryImage Category = "image"
)

// extWindow is how many trailing characters of the URL path are inspected
// when matching image extensions. Five covers ".webp" and friends while
// tolerating junk like trailing version suffixes.
const extWindow = 5

// Rules is the read-only classification rule set: hostname substrings for
// video and file hosts, and recognized image extensions. Built once at
// startup and never mutated.
type Rules struct {
	videoHosts []string
	zipHosts   []string
	imageExts  []string
}

// NewRules builds a rule set. Host substrings and extensions are matched
// case-insensitively; they are lowered here once.
func NewRules(videoHosts, zipHosts, imageExts []string) Rules {
	return Rules{
		videoHosts: lowerAll(videoHosts),
		zipHosts:   lowerAll(zipHosts),
		imageExts:  lowerAll(imageExts),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Classify assigns a URL to exactly one category. Malformed URLs are
// unclassifiable, not errors: they come back as CategoryNone and the batch
// moves on. The zip-host check runs before the video-host check so a host
// matching both substring lists lands in zips.
func (r Rules) Classify(rawURL string) Category {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return CategoryNone
	}
	host := strings.ToLower(u.Hostname())

	for _, sub := range r.zipHosts {
		if strings.Contains(host, sub) {
			return CategoryZip
		}
	}
	for _, sub := range r.videoHosts {
		if strings.Contains(host, sub) {
			return CategoryVideo
		}
	}
	if r.HasImageExt(rawURL) {
		return CategoryImage
	}
	return CategoryNone
}

// HasImageExt reports whether the URL path ends in a recognized image
// extension. The query string is ignored; only the last few characters of
// the path are considered.
func (r Rules) HasImageExt(rawURL string) bool {
	path := rawURL
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(path)
	if len(path) > extWindow {
		path = path[len(path)-extWindow:]
	}
	for _, ext := range r.imageExts {
		if strings.Contains(path, ext) {
			return true
		}
	}
	return false
}
