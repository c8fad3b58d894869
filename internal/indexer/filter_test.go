package indexer

import (
	"strings"
	"testing"
)

// filler pads a prefix past the minimum content length without
// triggering any other noise rule.
func filler(prefix string) string {
	return prefix + strings.Repeat(" Knowledge compounds when notes connect.", 5)
}

func TestIsNoise(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "short text",
			text: "Too short to matter.",
			want: true,
		},
		{
			name: "whitespace padding does not count",
			text: "abc" + strings.Repeat(" ", 300),
			want: true,
		},
		{
			name: "plain content",
			text: filler("A long discussion of ideas."),
			want: false,
		},
		{
			name: "isbn marker",
			text: filler("ISBN 978-3-16-148410-0 appears in this text."),
			want: true,
		},
		{
			name: "issn marker",
			text: filler("ISSN 2049-3630 shows up here."),
			want: true,
		},
		{
			name: "doi marker",
			text: filler("See DOI 10.1000/182 for the record."),
			want: true,
		},
		{
			name: "urn marker",
			text: filler("Identified by urn:isbn references."),
			want: true,
		},
		{
			name: "marker embedded in word",
			text: filler("They were doing the work required."),
			want: true,
		},
		{
			name: "sources heading near start",
			text: filler("Sources\nThe following were consulted."),
			want: true,
		},
		{
			name: "sources mentioned later",
			text: filler("This chapter explains the method in detail.") + " Several sources agree on this point.",
			want: false,
		},
		{
			name: "single url",
			text: filler("More at https://example.org for the curious."),
			want: false,
		},
		{
			name: "two urls",
			text: filler("See https://example.org and http://example.net together."),
			want: true,
		},
		{
			name: "www twice",
			text: filler("Visit www.example.org or www.example.net anytime."),
			want: true,
		},
		{
			name: "mixed url kinds",
			text: filler("Listed at https://example.org and www.example.net as well."),
			want: true,
		},
		{
			name: "empty text",
			text: "",
			want: true,
		},
		{
			name: "hundred runes",
			text: strings.Repeat("a", 100),
			want: true,
		},
		{
			name: "one rune under the minimum",
			text: strings.Repeat("a", 149),
			want: true,
		},
		{
			name: "exactly the minimum",
			text: strings.Repeat("a", 150),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoise(tt.text); got != tt.want {
				t.Errorf("IsNoise(%q...) = %v, want %v", truncate(tt.text, 40), got, tt.want)
			}
		})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func TestIsNoise_CaseInsensitive(t *testing.T) {
	variants := []string{"isbn", "ISBN", "Isbn", "iSbN"}
	for _, variant := range variants {
		text := filler("Registered under " + variant + " 0-000-00000-0.")
		if !IsNoise(text) {
			t.Errorf("IsNoise() with %q marker = false, want true", variant)
		}
	}
}

func TestIsNoise_HeaderWindowBoundary(t *testing.T) {
	// The marker must fall entirely inside the first 50 runes. Starting
	// at rune 43 it ends exactly at the boundary; one rune later it
	// crosses out of the window and no longer counts.
	inside := filler(strings.Repeat("x", 42) + " sources listed below.")
	if !IsNoise(inside) {
		t.Error("IsNoise() with sources ending at rune 50 = false, want true")
	}

	crossing := filler(strings.Repeat("x", 43) + " sources listed below.")
	if IsNoise(crossing) {
		t.Error("IsNoise() with sources crossing the header window = true, want false")
	}
}
