package fetch

import "testing"

func TestNeedsBrowser(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "plain static page",
			html: `<html><head><title>Thread</title></head><body><div class="bbWrapper"><a href="https://gofile.io/d/x">file</a></div></body></html>`,
			want: false,
		},
		{
			name: "cloudflare challenge form",
			html: `<html><body><form id="cf-challenge-form"></form></body></html>`,
			want: true,
		},
		{
			name: "turnstile widget",
			html: `<script src="https://challenges.cloudflare.com/turnstile/v0/api.js"></script>`,
			want: true,
		},
		{
			name: "interstitial title text",
			html: `<html><head><title>Just a moment...</title></head><body></body></html>`,
			want: true,
		},
		{
			name: "lazy loaded images",
			html: `<img data-src="https://cdn.example.net/a.jpg" class="lazy">`,
			want: true,
		},
		{
			name: "spa shell",
			html: `<html><body><div id="root"></div><script src="/bundle.js"></script></body></html>`,
			want: true,
		},
		{
			name: "noscript javascript warning",
			html: `<html><body><noscript>Please enable JavaScript to view this page.</noscript></body></html>`,
			want: true,
		},
		{
			name: "noscript without javascript mention",
			html: `<html><body><noscript><img src="https://t.example/pixel.png"></noscript>content</body></html>`,
			want: false,
		},
		{
			name: "empty",
			html: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsBrowser(tt.html); got != tt.want {
				t.Errorf("NeedsBrowser() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFetcher_UnknownMode(t *testing.T) {
	if _, err := New(Mode("webdriver"), nil, StaticConfig{}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewFetcher_Types(t *testing.T) {
	static, err := New(ModeStatic, nil, StaticConfig{UserAgent: "test"})
	if err != nil {
		t.Fatalf("New(static) error = %v", err)
	}
	if static.Type() != "static" {
		t.Errorf("Type() = %q, want static", static.Type())
	}

	auto, err := New(ModeAuto, &BrowserFetcher{}, StaticConfig{UserAgent: "test"})
	if err != nil {
		t.Fatalf("New(auto) error = %v", err)
	}
	if auto.Type() != "auto" {
		t.Errorf("Type() = %q, want auto", auto.Type())
	}
}
