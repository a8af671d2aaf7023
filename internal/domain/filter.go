package domain

import "strings"

// CategoryAll matches every category.
const CategoryAll = "all"

// Filter narrows an article listing. Zero values match everything.
type Filter struct {
	Category  string
	Query     string
	Sentiment Bucket
}

// MatchesCategory compares categories case-insensitively.
func MatchesCategory(a Article, category string) bool {
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(a.Category), strings.TrimSpace(category))
}

// MatchesQuery reports whether the headline contains q, ignoring case.
func MatchesQuery(a Article, q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Headline), strings.ToLower(q))
}

// Match applies every criterion of f to a.
func (f Filter) Match(a Article) bool {
	if !MatchesCategory(a, f.Category) {
		return false
	}
	if !MatchesQuery(a, f.Query) {
		return false
	}
	if f.Sentiment != "" && Classify(a) != f.Sentiment {
		return false
	}
	return true
}

// FilterArticles keeps the articles matching f, preserving order.
func FilterArticles(list []Article, f Filter) []Article {
	out := make([]Article, 0, len(list))
	for _, a := range list {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
