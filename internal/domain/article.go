package domain

import "time"

// Scores holds the sentiment sub-scores computed for one field of an article.
// Example: {"compound": 0.42, "pos": 0.3, "neu": 0.6, "neg": 0.1}
type Scores map[string]float64

// Sentiment maps an analysed field ("headline", "summary", ...) to its scores.
type Sentiment map[string]Scores

// Article is the shape served by the upstream news listing.
//
// It carries no stable identifier; use ArticleID to derive one.
type Article struct {
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	SourceLink  string    `json:"sourceLink"`
	Date        string    `json:"date"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
}

// SavedArticle is a denormalized snapshot of an Article taken when it was
// bookmarked. Later upstream edits never reach it.
type SavedArticle struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is ArticleID of the snapshot.
	ID string `json:"id"`

	// ─────────────────────────────
	// Display fields
	// ─────────────────────────────

	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	SourceLink  string    `json:"sourceLink"`
	Date        string    `json:"date"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// BookmarkedAt is set once, when the record is inserted.
	BookmarkedAt time.Time `json:"bookmarkedAt"`
}

// Snapshot captures a into a SavedArticle stamped with at.
func Snapshot(a Article, at time.Time) SavedArticle {
	return SavedArticle{
		ID:           ArticleID(a),
		Category:     a.Category,
		Source:       a.Source,
		Headline:     a.Headline,
		Summary:      a.Summary,
		Description:  a.Description,
		Image:        a.Image,
		SourceLink:   a.SourceLink,
		Date:         a.Date,
		Sentiment:    a.Sentiment.clone(),
		BookmarkedAt: at.UTC(),
	}
}

// Article returns the display fields of the snapshot as an Article.
func (s SavedArticle) Article() Article {
	return Article{
		Category:    s.Category,
		Source:      s.Source,
		Headline:    s.Headline,
		Summary:     s.Summary,
		Description: s.Description,
		Image:       s.Image,
		SourceLink:  s.SourceLink,
		Date:        s.Date,
		Sentiment:   s.Sentiment,
	}
}

func (s Sentiment) clone() Sentiment {
	if s == nil {
		return nil
	}
	out := make(Sentiment, len(s))
	for field, scores := range s {
		copied := make(Scores, len(scores))
		for k, v := range scores {
			copied[k] = v
		}
		out[field] = copied
	}
	return out
}
