package entities

import "sort"

// WordTally accumulates base-form vocabulary from user utterances, grouped
// by word class and deduplicated by lemma.
type WordTally struct {
	Nouns      map[string]struct{}
	Verbs      map[string]struct{}
	Adjectives map[string]struct{}
}

// NewWordTally creates an empty tally.
func NewWordTally() WordTally {
	return WordTally{
		Nouns:      make(map[string]struct{}),
		Verbs:      make(map[string]struct{}),
		Adjectives: make(map[string]struct{}),
	}
}

// Merge adds lemmas to their category sets. Empty strings are skipped.
func (w WordTally) Merge(nouns, verbs, adjectives []string) {
	add := func(set map[string]struct{}, words []string) {
		for _, word := range words {
			if word == "" {
				continue
			}
			set[word] = struct{}{}
		}
	}
	add(w.Nouns, nouns)
	add(w.Verbs, verbs)
	add(w.Adjectives, adjectives)
}

// Size returns the total number of distinct lemmas across all categories.
func (w WordTally) Size() int {
	return len(w.Nouns) + len(w.Verbs) + len(w.Adjectives)
}

// SortedNouns returns the noun lemmas sorted alphabetically.
func (w WordTally) SortedNouns() []string { return sortedLemmas(w.Nouns) }

// SortedVerbs returns the verb lemmas sorted alphabetically.
func (w WordTally) SortedVerbs() []string { return sortedLemmas(w.Verbs) }

// SortedAdjectives returns the adjective lemmas sorted alphabetically.
func (w WordTally) SortedAdjectives() []string { return sortedLemmas(w.Adjectives) }

func sortedLemmas(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for lemma := range set {
		out = append(out, lemma)
	}
	sort.Strings(out)
	return out
}
