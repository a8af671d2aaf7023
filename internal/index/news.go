package index

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
)

// Entry is an indexed article and its lifecycle state.
type Entry struct {
	ID        string
	Article   domain.Article
	Position  int       // position in the latest upstream listing
	Disabled  bool      // no longer in the upstream listing
	FirstSeen time.Time // first listing that contained it
	UpdatedAt time.Time // last change of Disabled
}

// NewsIndex holds the latest upstream listing in memory, keyed by article ID.
// Articles that leave the listing are disabled rather than removed so that
// recently listed articles can still be looked up until garbage collected.
type NewsIndex struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	lastReload time.Time
}

// NewNewsIndex creates an empty index
func NewNewsIndex() *NewsIndex {
	return &NewsIndex{entries: make(map[string]*Entry)}
}

// UpdateResult summarizes what an Update changed.
type UpdateResult struct {
	Active   int
	Added    int
	Disabled int
}

// Update replaces the active listing with articles. Duplicates keep their
// first position. Entries missing from articles are disabled at now.
func (idx *NewsIndex) Update(articles []domain.Article, now time.Time) UpdateResult {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var res UpdateResult
	seen := make(map[string]bool, len(articles))
	for _, a := range articles {
		id := domain.ArticleID(a)
		if seen[id] {
			continue
		}
		seen[id] = true

		e, ok := idx.entries[id]
		if !ok {
			e = &Entry{ID: id, FirstSeen: now, UpdatedAt: now}
			idx.entries[id] = e
			res.Added++
		}
		if e.Disabled {
			e.Disabled = false
			e.UpdatedAt = now
		}
		e.Article = a
		e.Position = res.Active
		res.Active++
	}

	for id, e := range idx.entries {
		if seen[id] || e.Disabled {
			continue
		}
		e.Disabled = true
		e.UpdatedAt = now
		res.Disabled++
	}

	idx.lastReload = now
	return res
}

// Get retrieves an entry by article ID, disabled or not
func (idx *NewsIndex) Get(id string) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Articles returns the active articles in upstream order
func (idx *NewsIndex) Articles() []domain.Article {
	idx.mu.RLock()
	active := make([]*Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		if !e.Disabled {
			active = append(active, e)
		}
	}
	idx.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool { return active[i].Position < active[j].Position })

	out := make([]domain.Article, len(active))
	for i, e := range active {
		out[i] = e.Article
	}
	return out
}

// Entries returns a copy of every entry, including disabled ones
func (idx *NewsIndex) Entries() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, *e)
	}
	return out
}

// Delete removes an entry from the index
func (idx *NewsIndex) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.entries, id)
}

// Count returns the number of active articles
func (idx *NewsIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, e := range idx.entries {
		if !e.Disabled {
			n++
		}
	}
	return n
}

// Total returns the number of entries, including disabled ones
func (idx *NewsIndex) Total() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.entries)
}

// LastReload returns the time of the last Update
func (idx *NewsIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
