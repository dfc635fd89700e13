package creditor

import (
	"fmt"
	"sort"
	"sync"
)

const (
	aliasPenalty        = 0.95
	fuzzyThreshold      = 0.7
	fuzzyKeyPenalty     = 0.8
	fuzzyAliasPenalty   = 0.75
	partialThreshold    = 0.6
	partialPenalty      = 0.6
	wordMatchThreshold  = 0.8
	noMatchConfidence   = 0.1
	candidateMinQuality = 0.6
	candidateMinFuzzy   = 0.5

	// DefaultMatchLimit is the number of candidates FindPotentialMatches returns
	// when the caller passes a non-positive limit.
	DefaultMatchLimit = 5
)

// Entry is one registry record as stored in YAML registry files.
type Entry struct {
	Key      string `yaml:"key"`
	Identity `yaml:",inline"`
}

type registered struct {
	key      string
	identity Identity
	aliases  []string // normalized
}

// Resolver maps free-text creditor labels to registered identities.
// Lookups may run concurrently; AddCreditor takes the write lock.
type Resolver struct {
	mu      sync.RWMutex
	keys    []string
	entries map[string]*registered
}

// NewResolver builds a resolver from the given entries, in order.
// An entry without a key is keyed by its normalized name.
func NewResolver(entries []Entry) (*Resolver, error) {
	r := &Resolver{entries: make(map[string]*registered, len(entries))}
	for _, e := range entries {
		key := e.Key
		if key == "" {
			key = e.Name
		}
		if err := r.AddCreditor(key, e.Identity); err != nil {
			return nil, fmt.Errorf("registering %q: %w", key, err)
		}
	}
	return r, nil
}

// AddCreditor registers an identity under key. Re-adding an existing key replaces the
// identity but keeps its position in registry order.
func (r *Resolver) AddCreditor(key string, identity Identity) error {
	normalizedKey := Normalize(key)
	if normalizedKey == "" {
		return ErrEmptyKey
	}
	if err := identity.Validate(); err != nil {
		return err
	}

	entry := &registered{key: normalizedKey, identity: identity.clone()}
	for _, alias := range identity.Aliases {
		if normalized := Normalize(alias); normalized != "" {
			entry.aliases = append(entry.aliases, normalized)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[normalizedKey]; !exists {
		r.keys = append(r.keys, normalizedKey)
	}
	r.entries[normalizedKey] = entry
	return nil
}

// Count returns the number of registered creditors.
func (r *Resolver) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// CreditorInfo looks up an identity by registry key, falling back to its canonical name.
func (r *Resolver) CreditorInfo(name string) (Identity, bool) {
	normalized := Normalize(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[normalized]; ok {
		return e.identity.clone(), true
	}
	for _, key := range r.keys {
		e := r.entries[key]
		if Normalize(e.identity.Name) == normalized {
			return e.identity.clone(), true
		}
	}
	return Identity{}, false
}

// CreditorsByType returns every identity of the given type in registry order.
func (r *Resolver) CreditorsByType(t Type) []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Identity
	for _, key := range r.keys {
		if e := r.entries[key]; e.identity.Type == t {
			out = append(out, e.identity.clone())
		}
	}
	return out
}

// StandardizeCreditorName resolves raw to the best registered identity using the
// exact, alias, fuzzy and partial tiers in that order. The fuzzy tier takes the
// most similar candidate; the partial tier takes the first key in registry order
// whose word overlap reaches the threshold. Unresolvable input yields a
// synthetic identity with confidence 0.1; it is never an error.
func (r *Resolver) StandardizeCreditorName(raw string) Match {
	normalized := Normalize(raw)
	if normalized == "" {
		return noMatch(raw)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[normalized]; ok {
		return newMatch(e, e.identity.BaseConfidence, MatchExact, raw)
	}

	for _, key := range r.keys {
		e := r.entries[key]
		for _, alias := range e.aliases {
			if alias == normalized {
				return newMatch(e, e.identity.BaseConfidence*aliasPenalty, MatchAlias, raw)
			}
		}
	}

	if e, similarity, viaAlias := r.bestFuzzy(normalized); e != nil && similarity >= fuzzyThreshold {
		penalty := fuzzyKeyPenalty
		if viaAlias {
			penalty = fuzzyAliasPenalty
		}
		return newMatch(e, e.identity.BaseConfidence*similarity*penalty, MatchFuzzy, raw)
	}

	for _, key := range r.keys {
		if score := wordOverlap(normalized, key); score >= partialThreshold {
			e := r.entries[key]
			return newMatch(e, e.identity.BaseConfidence*score*partialPenalty, MatchPartial, raw)
		}
	}

	return noMatch(raw)
}

// bestFuzzy returns the entry whose key or alias is most similar to normalized.
// The first candidate in registry order wins ties. Callers hold the read lock.
func (r *Resolver) bestFuzzy(normalized string) (*registered, float64, bool) {
	var best *registered
	bestScore := -1.0
	viaAlias := false

	for _, key := range r.keys {
		e := r.entries[key]
		if s := Similarity(normalized, e.key); s > bestScore {
			best, bestScore, viaAlias = e, s, false
		}
		for _, alias := range e.aliases {
			if s := Similarity(normalized, alias); s > bestScore {
				best, bestScore, viaAlias = e, s, true
			}
		}
	}
	return best, bestScore, viaAlias
}

// FindPotentialMatches scores every registered creditor independently and returns up
// to limit candidates ordered by confidence. A non-positive limit means DefaultMatchLimit.
func (r *Resolver) FindPotentialMatches(raw string, limit int) []Match {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	normalized := Normalize(raw)
	if normalized == "" {
		return nil
	}

	r.mu.RLock()
	matches := make([]Match, 0)
	for _, key := range r.keys {
		if m, ok := scoreCandidate(r.entries[key], normalized, raw); ok {
			matches = append(matches, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func scoreCandidate(e *registered, normalized, raw string) (Match, bool) {
	base := e.identity.BaseConfidence

	// Exact and alias quality (1.0 and 0.95) always clear candidateMinQuality.
	if normalized == e.key {
		return newMatch(e, base, MatchExact, raw), true
	}
	for _, alias := range e.aliases {
		if alias == normalized {
			return newMatch(e, base*aliasPenalty, MatchAlias, raw), aliasPenalty > candidateMinQuality
		}
	}

	similarity := Similarity(normalized, e.key)
	penalty := fuzzyKeyPenalty
	for _, alias := range e.aliases {
		if s := Similarity(normalized, alias); s > similarity {
			similarity, penalty = s, fuzzyAliasPenalty
		}
	}
	if similarity <= candidateMinFuzzy {
		return Match{}, false
	}
	return newMatch(e, base*similarity*penalty, MatchFuzzy, raw), true
}

func newMatch(e *registered, confidence float64, matchType MatchType, raw string) Match {
	return Match{
		Creditor:     e.identity.clone(),
		Confidence:   confidence,
		MatchType:    matchType,
		OriginalName: raw,
	}
}

func noMatch(raw string) Match {
	return Match{
		Creditor: Identity{
			Name:           raw,
			Type:           TypeOther,
			Aliases:        []string{},
			BaseConfidence: noMatchConfidence,
		},
		Confidence:   noMatchConfidence,
		MatchType:    MatchExact,
		OriginalName: raw,
	}
}
