package extract

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// readTestdata reads a file from the testdata directory
func readTestdata(t *testing.T, filename string) string {
	t.Helper()
	path := filepath.Join("testdata", filename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", filename, err)
	}
	return string(data)
}

func testRules() Rules {
	return NewRules(
		[]string{"videmms", "streamtape", "mixdrop"},
		[]string{"gofile", "pixeldrain", "mega.nz"},
		[]string{".jpg", "jpeg", ".png", ".gif", ".webp"},
	)
}

func testExtractor() *Extractor {
	return New(Config{
		TitleSelector:   "h1.p-title-value",
		ContentSelector: ".bbWrapper",
	}, testRules())
}

func TestExtract_Thread(t *testing.T) {
	html := readTestdata(t, "thread.html")

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.Title != "Example Thread Title" {
		t.Errorf("expected title 'Example Thread Title', got %q", res.Title)
	}

	wantVideos := []string{
		"https://videmms24.com/v/abc123",
		"https://streamtape.com/v/def456",
	}
	if !reflect.DeepEqual(res.Videos, wantVideos) {
		t.Errorf("videos = %v, want %v", res.Videos, wantVideos)
	}

	wantImages := []string{
		"http://x.com/a-full.png",
		"https://cdn.example.net/lazy-shot.jpeg",
		"https://cdn.example.net/second.webp?size=large",
	}
	if !reflect.DeepEqual(res.Images, wantImages) {
		t.Errorf("images = %v, want %v", res.Images, wantImages)
	}

	wantZips := []string{
		"https://gofile.io/d/zzz999",
		"https://pixeldrain.com/u/qqqq",
	}
	if !reflect.DeepEqual(res.Zips, wantZips) {
		t.Errorf("zips = %v, want %v", res.Zips, wantZips)
	}
}

func TestExtract_IgnoresContentOutsideRegions(t *testing.T) {
	html := readTestdata(t, "thread.html")

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// The header and sidebar carry classifiable links; none of them may
	// leak into the output.
	for _, v := range res.Videos {
		if v == "https://videmms24.com/promo" || v == "https://streamtape.com/v/sidebar-only" {
			t.Errorf("link outside content region was extracted: %s", v)
		}
	}
	for _, img := range res.Images {
		if img == "https://cdn.example.net/ad.png" {
			t.Errorf("image outside content region was extracted: %s", img)
		}
	}
}

func TestExtract_AnchorHrefWinsOverThumbnailSrc(t *testing.T) {
	html := `<div class="bbWrapper">
		<a href="http://x.com/full.png"><img src="http://x.com/thumb.png"></a>
	</div>`

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(res.Images) != 1 || res.Images[0] != "http://x.com/full.png" {
		t.Errorf("expected anchor href to win, got %v", res.Images)
	}
}

func TestExtract_NonImageAnchorFallsBackToSrc(t *testing.T) {
	html := `<div class="bbWrapper">
		<a href="https://example.com/post/5"><img src="http://x.com/shot.png"></a>
	</div>`

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(res.Images) != 1 || res.Images[0] != "http://x.com/shot.png" {
		t.Errorf("expected img src fallback, got %v", res.Images)
	}
}

func TestExtract_MissingTitleUsesDefault(t *testing.T) {
	html := `<html><body><div class="bbWrapper"></div></body></html>`

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.Title != DefaultTitle {
		t.Errorf("expected %q, got %q", DefaultTitle, res.Title)
	}
}

func TestExtract_TitleWithoutSpan(t *testing.T) {
	html := `<h1 class="p-title-value">  Plain Heading  </h1>`

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.Title != "Plain Heading" {
		t.Errorf("expected 'Plain Heading', got %q", res.Title)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	res, err := testExtractor().Extract("")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.Title != DefaultTitle {
		t.Errorf("expected default title, got %q", res.Title)
	}
	if res.Videos == nil || res.Images == nil || res.Zips == nil {
		t.Error("expected empty slices, got nil")
	}
	if len(res.Videos)+len(res.Images)+len(res.Zips) != 0 {
		t.Errorf("expected no links, got %+v", res)
	}
}

func TestExtract_ListsAreDisjoint(t *testing.T) {
	// The same gofile URL appears as a bare anchor and wrapped around an
	// image; it must land in exactly one list.
	html := `<div class="bbWrapper">
		<a href="https://gofile.io/d/abc">archive</a>
		<a href="https://gofile.io/d/abc"><img src="http://x.com/t.png"></a>
	</div>`

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	total := len(res.Videos) + len(res.Images) + len(res.Zips)
	seen := make(map[string]int)
	for _, lists := range [][]string{res.Videos, res.Images, res.Zips} {
		for _, u := range lists {
			seen[u]++
		}
	}
	for u, n := range seen {
		if n > 1 {
			t.Errorf("url %s appears in %d lists", u, n)
		}
	}

	// gofile anchor first, so the wrapped image falls back to its src.
	if len(res.Zips) != 1 || res.Zips[0] != "https://gofile.io/d/abc" {
		t.Errorf("zips = %v", res.Zips)
	}
	if total != 2 {
		t.Errorf("expected 2 links total, got %d: %+v", total, res)
	}
}

func TestExtract_LazyLoadDataSrc(t *testing.T) {
	html := `<div class="bbWrapper"><img data-src="https://cdn.example.net/x.gif"></div>`

	res, err := testExtractor().Extract(html)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(res.Images) != 1 || res.Images[0] != "https://cdn.example.net/x.gif" {
		t.Errorf("expected data-src image, got %v", res.Images)
	}
}
