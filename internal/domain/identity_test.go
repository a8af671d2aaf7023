package domain

import "testing"

func TestArticleIDStable(t *testing.T) {
	a := Article{Headline: "Markets rally on rate cut", SourceLink: "https://news.example.com/a"}
	b := Article{Headline: "  markets   RALLY on rate cut ", SourceLink: "https://news.example.com/a "}

	if ArticleID(a) != ArticleID(b) {
		t.Errorf("ArticleID should ignore case and spacing: %s != %s", ArticleID(a), ArticleID(b))
	}
	if len(ArticleID(a)) != 16 {
		t.Errorf("ArticleID length = %d, want 16", len(ArticleID(a)))
	}
}

func TestArticleIDDistinguishes(t *testing.T) {
	tests := []struct {
		name string
		a, b Article
	}{
		{
			name: "same headline different link",
			a:    Article{Headline: "A", SourceLink: "https://x/1"},
			b:    Article{Headline: "A", SourceLink: "https://x/2"},
		},
		{
			name: "field boundary",
			a:    Article{Headline: "ab", SourceLink: "c"},
			b:    Article{Headline: "a", SourceLink: "bc"},
		},
		{
			name: "different headline same link",
			a:    Article{Headline: "A", SourceLink: "https://x/1"},
			b:    Article{Headline: "B", SourceLink: "https://x/1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ArticleID(tt.a) == ArticleID(tt.b) {
				t.Errorf("ArticleID(%+v) == ArticleID(%+v)", tt.a, tt.b)
			}
		})
	}
}

func TestArticleIDIgnoresDisplayFields(t *testing.T) {
	a := Article{Headline: "A", SourceLink: "https://x/1", Summary: "one", Image: "i1"}
	b := Article{Headline: "A", SourceLink: "https://x/1", Summary: "two", Category: "world"}
	if ArticleID(a) != ArticleID(b) {
		t.Error("ArticleID should only depend on headline and source link")
	}
}

func TestCanonicalHeadline(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Storm hits coast", "storm hits coast"},
		{"  Storm  hits\tcoast\n", "storm hits coast"},
		{"STORM HITS COAST", "storm hits coast"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := canonicalHeadline(tt.in); got != tt.want {
			t.Errorf("canonicalHeadline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
