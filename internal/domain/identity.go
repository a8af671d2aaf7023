package domain

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ArticleID derives the identity of an article from its canonical fields:
// the lower-cased headline with runs of whitespace collapsed to one space, and
// the trimmed source link.
//
// Two articles with the same headline from different links are distinct, and
// the same article re-served with different casing or spacing is not.
func ArticleID(a Article) string {
	d := xxhash.New()
	_, _ = d.WriteString(canonicalHeadline(a.Headline))
	// Separator so ("ab", "c") and ("a", "bc") never collide.
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(strings.TrimSpace(a.SourceLink))
	return fmt.Sprintf("%016x", d.Sum64())
}

func canonicalHeadline(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
