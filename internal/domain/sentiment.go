package domain

import "math"

// Bucket is the coarse sentiment class shown on cards and charts.
type Bucket string

const (
	BucketPositive Bucket = "positive"
	BucketNeutral  Bucket = "neutral"
	BucketNegative Bucket = "negative"
)

// Compound score thresholds (VADER convention).
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// ParseBucket returns the bucket named by s. ok is false for anything else.
func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case BucketPositive, BucketNeutral, BucketNegative:
		return Bucket(s), true
	default:
		return "", false
	}
}

// HeadlineCompound returns sentiment.headline.compound, 0 when absent.
func HeadlineCompound(a Article) float64 {
	if a.Sentiment == nil {
		return 0
	}
	return a.Sentiment["headline"]["compound"]
}

// Classify buckets an article by its headline compound score.
func Classify(a Article) Bucket {
	c := HeadlineCompound(a)
	switch {
	case c >= PositiveThreshold:
		return BucketPositive
	case c <= NegativeThreshold:
		return BucketNegative
	default:
		return BucketNeutral
	}
}

// SentimentBreakdown counts articles per bucket.
type SentimentBreakdown struct {
	Category string `json:"category"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
	Total    int    `json:"total"`
}

// Breakdown counts the buckets of every article in list.
func Breakdown(category string, list []Article) SentimentBreakdown {
	b := SentimentBreakdown{Category: category}
	for _, a := range list {
		switch Classify(a) {
		case BucketPositive:
			b.Positive++
		case BucketNegative:
			b.Negative++
		default:
			b.Neutral++
		}
	}
	b.Total = len(list)
	return b
}

// Percentage returns the share of bucket in the breakdown, rounded to one
// decimal place. An empty breakdown yields 0.
func (b SentimentBreakdown) Percentage(bucket Bucket) float64 {
	if b.Total == 0 {
		return 0
	}
	var n int
	switch bucket {
	case BucketPositive:
		n = b.Positive
	case BucketNegative:
		n = b.Negative
	case BucketNeutral:
		n = b.Neutral
	}
	return math.Round(float64(n)/float64(b.Total)*1000) / 10
}
