// Package search ranks exercise catalog entries against free-text queries.
// The engine is a pure function over a caller-supplied snapshot: it never
// fetches anything and holds no state beyond its synonym table.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/fitcatalog/exercisedb-mcp/internal/exercisedb"
)

// Scoring weights. Empirically tuned; kept as-is for ranking stability, not
// derived from any model.
const (
	titleSubstring         = 50
	titleSubstringExpanded = 30
	titleWholeWord         = 100
	titleWholeWordExpanded = 60
	titlePrefixBonus       = 30
	titleEarlyBonus        = 15
	titleEarlyWindow       = 10
	typeMatch              = 40
	typeMatchExpanded      = 25
	primaryMatch           = 30
	primaryMatchExpanded   = 20
	secondaryMatch         = 20
	secondaryMatchExpanded = 10
	fullCoverageBonus      = 50
	phraseBonus            = 200
)

// Filters narrows search results by exact, case-insensitive field matches.
type Filters struct {
	MuscleGroup  string
	ExerciseType string
}

// Engine scores catalog entries against tokenized queries.
type Engine struct {
	synonyms SynonymTable
}

// NewEngine creates an Engine using the given synonym table.
// A nil table falls back to DefaultSynonyms.
func NewEngine(synonyms SynonymTable) *Engine {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Engine{synonyms: synonyms}
}

// token is one member of the expanded query token set. sources records which
// original query tokens this token can cover, so coverage is counted against
// the user's words rather than the expansion.
type token struct {
	text     string
	original bool
	sources  []int
}

// Search scores every item against the query and returns matches ordered by
// descending relevance; ties keep catalog order. An empty or whitespace-only
// query skips scoring and returns all items in catalog order. Filters are
// applied last, after ranking.
func (e *Engine) Search(items []exercisedb.Exercise, query string, filters Filters) []exercisedb.Exercise {
	originals := strings.Fields(strings.ToLower(strings.TrimSpace(query)))

	var results []exercisedb.Exercise
	if len(originals) == 0 {
		results = items
	} else {
		expanded := e.expand(originals)
		phrase := strings.Join(originals, " ")

		type scoredItem struct {
			item  exercisedb.Exercise
			score float64
		}
		var matched []scoredItem
		for _, item := range items {
			s := score(item, originals, expanded, phrase)
			if s > 0 {
				matched = append(matched, scoredItem{item: item, score: s})
			}
		}

		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].score > matched[j].score
		})

		results = make([]exercisedb.Exercise, len(matched))
		for i, m := range matched {
			results[i] = m.item
		}
	}

	return applyFilters(results, filters)
}

// expand builds the deduplicated token set for a query: each original token
// plus, when the token belongs to a synonym entry, that entry's canonical
// form and all of its aliases.
func (e *Engine) expand(originals []string) []*token {
	byText := make(map[string]*token)
	var order []*token

	add := func(text string, source int, original bool) {
		t, ok := byText[text]
		if !ok {
			t = &token{text: text}
			byText[text] = t
			order = append(order, t)
		}
		t.original = t.original || original
		for _, s := range t.sources {
			if s == source {
				return
			}
		}
		t.sources = append(t.sources, source)
	}

	for i, orig := range originals {
		add(orig, i, true)
		for canonical, aliases := range e.synonyms {
			if !matchesEntry(orig, canonical, aliases) {
				continue
			}
			add(canonical, i, false)
			for _, alias := range aliases {
				add(alias, i, false)
			}
		}
	}

	return order
}

func matchesEntry(tok, canonical string, aliases []string) bool {
	if tok == canonical {
		return true
	}
	for _, alias := range aliases {
		if tok == alias {
			return true
		}
	}
	return false
}

// score computes the relevance of one item. Raw per-token field scores are
// scaled down proportionally when some original tokens found no match at all,
// and bumped when a multi-token query is fully covered or the title contains
// the query verbatim.
func score(item exercisedb.Exercise, originals []string, expanded []*token, phrase string) float64 {
	title := strings.ToLower(item.Name)
	exerciseType := strings.ToLower(item.Type)
	primary := strings.ToLower(item.Muscle)
	secondary := make([]string, len(item.SecondaryMuscles))
	for i, m := range item.SecondaryMuscles {
		secondary[i] = strings.ToLower(m)
	}

	raw := 0
	covered := make([]bool, len(originals))

	for _, tok := range expanded {
		matched := false

		if idx := strings.Index(title, tok.text); idx >= 0 {
			base := titleSubstring
			if !tok.original {
				base = titleSubstringExpanded
			}
			if hasWholeWord(title, tok.text) {
				base = titleWholeWord
				if !tok.original {
					base = titleWholeWordExpanded
				}
			}
			raw += base
			if idx == 0 {
				raw += titlePrefixBonus
			} else if idx < titleEarlyWindow {
				raw += titleEarlyBonus
			}
			matched = true
		}

		if strings.Contains(exerciseType, tok.text) {
			if tok.original {
				raw += typeMatch
			} else {
				raw += typeMatchExpanded
			}
			matched = true
		}

		if strings.Contains(primary, tok.text) {
			if tok.original {
				raw += primaryMatch
			} else {
				raw += primaryMatchExpanded
			}
			matched = true
		}

		for _, m := range secondary {
			if strings.Contains(m, tok.text) {
				if tok.original {
					raw += secondaryMatch
				} else {
					raw += secondaryMatchExpanded
				}
				matched = true
				break
			}
		}

		if matched {
			for _, src := range tok.sources {
				covered[src] = true
			}
		}
	}

	coveredCount := 0
	for _, c := range covered {
		if c {
			coveredCount++
		}
	}

	final := float64(raw)
	if coveredCount < len(originals) {
		final *= float64(coveredCount) / float64(len(originals))
	} else if len(originals) > 1 {
		final += fullCoverageBonus
	}

	if strings.Contains(title, phrase) {
		final += phraseBonus
	}

	return final
}

// hasWholeWord reports whether word appears in s delimited by non-alphanumeric
// boundaries.
func hasWholeWord(s, word string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if f == word {
			return true
		}
	}
	return false
}

func applyFilters(items []exercisedb.Exercise, filters Filters) []exercisedb.Exercise {
	if filters.MuscleGroup == "" && filters.ExerciseType == "" {
		return items
	}

	filtered := make([]exercisedb.Exercise, 0, len(items))
	for _, item := range items {
		if filters.MuscleGroup != "" && !matchesMuscleGroup(item, filters.MuscleGroup) {
			continue
		}
		if filters.ExerciseType != "" && !strings.EqualFold(item.Type, filters.ExerciseType) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// matchesMuscleGroup matches the primary muscle or any secondary muscle,
// exact and case-insensitive.
func matchesMuscleGroup(item exercisedb.Exercise, group string) bool {
	if strings.EqualFold(item.Muscle, group) {
		return true
	}
	for _, m := range item.SecondaryMuscles {
		if strings.EqualFold(m, group) {
			return true
		}
	}
	return false
}
