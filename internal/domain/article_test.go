package domain

import (
	"testing"
	"time"
)

func TestSnapshot(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	a := Article{
		Category:   "science",
		Headline:   "Comet visible tonight",
		SourceLink: "https://news.example.com/comet",
		Sentiment:  Sentiment{"headline": Scores{"compound": 0.3}},
	}

	s := Snapshot(a, at)

	if s.ID != ArticleID(a) {
		t.Errorf("Snapshot ID = %s, want %s", s.ID, ArticleID(a))
	}
	if !s.BookmarkedAt.Equal(at) || s.BookmarkedAt.Location() != time.UTC {
		t.Errorf("BookmarkedAt = %v, want %v in UTC", s.BookmarkedAt, at)
	}

	// The snapshot must not share the sentiment map with the source article.
	a.Sentiment["headline"]["compound"] = -1
	if s.Sentiment["headline"]["compound"] != 0.3 {
		t.Error("Snapshot should deep-copy sentiment scores")
	}

	if back := s.Article(); back.Headline != a.Headline || back.Category != a.Category {
		t.Errorf("Article() = %+v", back)
	}
}
