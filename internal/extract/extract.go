// Package extract parses rendered forum markup into a title and categorized
// resource links. It is pure document traversal: no I/O, no browser, no
// scripting.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTitle is used when the page carries no usable thread title.
const DefaultTitle = "Untitled Thread"

// Result is the structured output of one scrape. The three lists are
// disjoint, duplicate-free, and ordered by first appearance in the
// document.
type Result struct {
	Title  string   `json:"title" yaml:"title"`
	Videos []string `json:"videos" yaml:"videos"`
	Images []string `json:"images" yaml:"images"`
	Zips   []string `json:"zips" yaml:"zips"`
}

// Config holds the markup selectors the extractor targets.
type Config struct {
	// TitleSelector matches the thread title heading.
	TitleSelector string
	// ContentSelector matches post-content wrapper regions. Links and
	// images outside these regions (navigation, sidebars, ads) are
	// ignored by design.
	ContentSelector string
}

// Extractor turns rendered HTML into a Result using a fixed rule set.
type Extractor struct {
	cfg   Config
	rules Rules
}

// New creates an extractor.
func New(cfg Config, rules Rules) *Extractor {
	return &Extractor{cfg: cfg, rules: rules}
}

// Extract parses the markup and returns the structured result. Missing
// title headings and absent content regions degrade to defaults rather
// than failing; only unparseable input is an error.
func (e *Extractor) Extract(html string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Title:  e.title(doc),
		Videos: []string{},
		Images: []string{},
		Zips:   []string{},
	}

	seen := make(map[string]struct{})
	doc.Find(e.cfg.ContentSelector).Each(func(_ int, region *goquery.Selection) {
		e.collectLinks(region, &res, seen)
		e.collectImages(region, &res, seen)
	})

	return res, nil
}

// title resolves the thread title: the nested span inside the title
// heading, then the heading's own text, then the literal default.
func (e *Extractor) title(doc *goquery.Document) string {
	heading := doc.Find(e.cfg.TitleSelector).First()
	if title := strings.TrimSpace(heading.Find("span").First().Text()); title != "" {
		return title
	}
	if title := strings.TrimSpace(heading.Text()); title != "" {
		return title
	}
	return DefaultTitle
}

// collectLinks routes every absolute anchor in the region to the video or
// zip list according to its hostname.
func (e *Extractor) collectLinks(region *goquery.Selection, res *Result, seen map[string]struct{}) {
	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return
		}
		switch e.rules.Classify(href) {
		case CategoryVideo:
			res.Videos = appendUnique(res.Videos, seen, href)
		case CategoryZip:
			res.Zips = appendUnique(res.Zips, seen, href)
		}
	})
}

// collectImages gathers image sources in the region. A lazy-load data-src
// stands in for a missing src. When the image sits inside an anchor whose
// href also carries an image extension, the anchor wins: it points at the
// full-resolution file while src is usually a thumbnail.
func (e *Extractor) collectImages(region *goquery.Selection, res *Result, seen map[string]struct{}) {
	region.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if !strings.HasPrefix(src, "http") {
			return
		}

		candidate := ""
		if parent := img.Closest("a[href]"); parent.Length() > 0 {
			href := strings.TrimSpace(parent.AttrOr("href", ""))
			if strings.HasPrefix(href, "http") && e.rules.HasImageExt(href) {
				candidate = href
			}
		}
		if candidate == "" && e.rules.HasImageExt(src) {
			candidate = src
		}
		if candidate == "" {
			return
		}
		res.Images = appendUnique(res.Images, seen, candidate)
	})
}

// appendUnique inserts url into list unless any list already holds it. The
// shared seen set is what keeps the three output lists disjoint.
func appendUnique(list []string, seen map[string]struct{}, url string) []string {
	if _, ok := seen[url]; ok {
		return list
	}
	seen[url] = struct{}{}
	return append(list, url)
}
