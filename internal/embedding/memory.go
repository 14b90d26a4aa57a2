package embedding

import (
	"context"
	"sync"
)

// MemoryIndex is a map-backed Index used in tests and when no database-backed
// index is wired.
type MemoryIndex struct {
	embedder Embedder

	mu      sync.RWMutex
	entries map[int64]memoryEntry
}

type memoryEntry struct {
	text   string
	vector []float32
}

func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		entries:  make(map[int64]memoryEntry),
	}
}

func (i *MemoryIndex) Upsert(_ context.Context, ruleID int64, text string) error {
	snapshot := text
	if len(snapshot) > snapshotLimit {
		snapshot = snapshot[:snapshotLimit]
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[ruleID] = memoryEntry{text: snapshot, vector: i.embedder.Embed(text)}
	return nil
}

func (i *MemoryIndex) Remove(_ context.Context, ruleID int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, ruleID)
	return nil
}

func (i *MemoryIndex) FindSimilar(_ context.Context, text string, topK int, threshold float64) ([]Match, error) {
	query := i.embedder.Embed(text)

	i.mu.RLock()
	defer i.mu.RUnlock()

	var matches []Match
	for ruleID, entry := range i.entries {
		score := Cosine(query, entry.vector)
		if score >= threshold {
			matches = append(matches, Match{RuleID: ruleID, RuleText: entry.text, Score: score})
		}
	}

	sortAndCap(&matches, topK)
	return matches, nil
}
