// Package news fetches the article listing from the upstream news API.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/utils"
)

// ListingPath is the upstream endpoint serving the full article listing.
const ListingPath = "/api/news"

// maxListingBytes caps how much of an upstream response is read.
const maxListingBytes = 32 << 20

var ErrUpstreamStatus = errors.New("unexpected upstream status")

// Client talks to the upstream listing API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// NewClient creates a client for baseURL (ex: "http://localhost:5001").
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// Fetch retrieves the whole listing. A non-2xx answer is an error; entries
// that cannot be decoded are skipped.
func (c *Client) Fetch(ctx context.Context) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ListingPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}

	articles, skipped, err := DecodeListing(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Warn("skipped undecodable upstream articles",
			logger.Int("skipped", skipped),
			logger.Int("kept", len(articles)))
	}
	return articles, nil
}

// wireArticle is the upstream shape, including the field name variants the
// listing is known to carry.
type wireArticle struct {
	Category    string                     `json:"category"`
	Source      string                     `json:"source"`
	Headline    string                     `json:"headline"`
	Summary     string                     `json:"summary"`
	Description string                     `json:"description"`
	Image       string                     `json:"image"`
	SourceLink  string                     `json:"sourceLink"`
	URL         string                     `json:"url"`
	Date        json.RawMessage            `json:"date"`
	Timestamp   json.RawMessage            `json:"timestamp"`
	Sentiment   map[string]json.RawMessage `json:"sentiment"`
}

// DecodeListing decodes a JSON array of articles. It fails only when the
// document is not an array; individual bad entries are counted in skipped.
func DecodeListing(body []byte) (articles []domain.Article, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode listing: %w", err)
	}

	articles = make([]domain.Article, 0, len(raw))
	for _, entry := range raw {
		a, ok := decodeArticle(entry)
		if !ok {
			skipped++
			continue
		}
		articles = append(articles, a)
	}
	return articles, skipped, nil
}

func decodeArticle(entry json.RawMessage) (domain.Article, bool) {
	var w wireArticle
	if err := json.Unmarshal(entry, &w); err != nil {
		return domain.Article{}, false
	}

	a := domain.Article{
		Category:    w.Category,
		Source:      w.Source,
		Headline:    w.Headline,
		Summary:     w.Summary,
		Description: w.Description,
		Image:       w.Image,
		SourceLink:  w.SourceLink,
		Date:        scalarString(w.Date),
		Sentiment:   decodeSentiment(w.Sentiment),
	}
	if a.SourceLink == "" {
		a.SourceLink = w.URL
	}
	if a.Date == "" {
		a.Date = scalarString(w.Timestamp)
	}

	// Nothing to identify or display.
	if strings.TrimSpace(a.Headline) == "" && strings.TrimSpace(a.SourceLink) == "" {
		return domain.Article{}, false
	}
	return a, true
}

// scalarString renders a JSON string or number as text; anything else is "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeSentiment keeps the numeric sub-scores and drops everything else
// (labels, nulls, nested objects).
func decodeSentiment(raw map[string]json.RawMessage) domain.Sentiment {
	if len(raw) == 0 {
		return nil
	}
	out := make(domain.Sentiment, len(raw))
	for name, group := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(group, &fields); err != nil {
			continue
		}
		scores := make(domain.Scores, len(fields))
		for k, v := range fields {
			var f float64
			if err := json.Unmarshal(v, &f); err == nil {
				scores[k] = f
				continue
			}
			// Some scrapers store scores as strings.
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					scores[k] = f
				}
			}
		}
		if len(scores) > 0 {
			out[name] = scores
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
