package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dirname/HistoryOfEverything/timeline"
)

// Fuzzy matching kicks in when the prefix walk finds fewer hits than this.
const fuzzyThreshold = 5

// A term matches a word fuzzily when its edit distance stays under this
// share of the longer string.
const fuzzyRatio = 0.4

// Index answers label searches over timeline entries. Every word of every
// label is indexed in a prefix trie; multi-word queries intersect their
// terms, and sparse results are topped up with Levenshtein-ranked fuzzy
// matches.
type Index struct {
	root  *node
	all   []*timeline.Entry
	order map[*timeline.Entry]int
}

type node struct {
	children map[rune]*node
	entries  []*timeline.Entry
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Build indexes every entry's label words.
func Build(entries []*timeline.Entry) *Index {
	ix := &Index{
		root:  newNode(),
		order: make(map[*timeline.Entry]int),
	}
	for _, e := range entries {
		ix.add(e)
	}
	return ix
}

func (ix *Index) add(e *timeline.Entry) {
	if _, ok := ix.order[e]; ok {
		return
	}
	ix.order[e] = len(ix.all)
	ix.all = append(ix.all, e)

	for _, word := range labelWords(e) {
		n := ix.root
		for _, r := range word {
			child, ok := n.children[r]
			if !ok {
				child = newNode()
				n.children[r] = child
			}
			n = child
		}
		n.entries = append(n.entries, e)
	}
}

// Find returns the entries matching query, best matches first. An empty
// query matches nothing.
func (ix *Index) Find(query string) []*timeline.Entry {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	matched := ix.prefixMatches(terms[0])
	for _, term := range terms[1:] {
		next := ix.prefixMatches(term)
		for e := range matched {
			if !next[e] {
				delete(matched, e)
			}
		}
	}

	results := make([]*timeline.Entry, 0, len(matched))
	for e := range matched {
		results = append(results, e)
	}
	sort.Slice(results, func(i, j int) bool {
		return ix.order[results[i]] < ix.order[results[j]]
	})

	if len(results) >= fuzzyThreshold {
		return results
	}
	return append(results, ix.fuzzyMatches(terms, matched)...)
}

// prefixMatches gathers every entry with a label word starting with term.
func (ix *Index) prefixMatches(term string) map[*timeline.Entry]bool {
	matched := make(map[*timeline.Entry]bool)
	n := ix.root
	for _, r := range term {
		child, ok := n.children[r]
		if !ok {
			return matched
		}
		n = child
	}
	n.collect(matched)
	return matched
}

// fuzzyMatches ranks the remaining entries by edit distance. Every query
// term has to land near some label word for an entry to qualify.
func (ix *Index) fuzzyMatches(terms []string, skip map[*timeline.Entry]bool) []*timeline.Entry {
	type scored struct {
		entry *timeline.Entry
		ratio float64
	}

	var fuzzy []scored
	for _, e := range ix.all {
		if skip[e] {
			continue
		}
		words := labelWords(e)
		worst := 0.0
		for _, term := range terms {
			best := 1.0
			for _, word := range words {
				if r := distanceRatio(term, word); r < best {
					best = r
				}
			}
			if best > worst {
				worst = best
			}
		}
		if worst < fuzzyRatio {
			fuzzy = append(fuzzy, scored{entry: e, ratio: worst})
		}
	}

	sort.Slice(fuzzy, func(i, j int) bool {
		if fuzzy[i].ratio != fuzzy[j].ratio {
			return fuzzy[i].ratio < fuzzy[j].ratio
		}
		return ix.order[fuzzy[i].entry] < ix.order[fuzzy[j].entry]
	})

	results := make([]*timeline.Entry, 0, len(fuzzy))
	for _, s := range fuzzy {
		results = append(results, s.entry)
	}
	return results
}

// distanceRatio is the edit distance between a term and a word, normalized
// by the longer of the two.
func distanceRatio(term, word string) float64 {
	maxlen := float64(len(term))
	if len(word) > len(term) {
		maxlen = float64(len(word))
	}
	if maxlen == 0 {
		return 1
	}
	return float64(levenshtein.ComputeDistance(term, word)) / maxlen
}

// collect gathers every entry in the subtree into matched.
func (n *node) collect(matched map[*timeline.Entry]bool) {
	for _, e := range n.entries {
		matched[e] = true
	}
	for _, child := range n.children {
		child.collect(matched)
	}
}

func labelWords(e *timeline.Entry) []string {
	return strings.Fields(strings.ToLower(e.Label))
}
