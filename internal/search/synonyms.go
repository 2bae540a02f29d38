package search

// SynonymTable maps a canonical short form to its longer aliases. Lookup is
// bidirectional: a query token equal to either the canonical form or one of
// its aliases expands to the canonical form plus every alias of that entry.
type SynonymTable map[string][]string

// DefaultSynonyms returns the table used in production. The entries cover the
// abbreviations lifters actually type; they make no claim to linguistic
// completeness.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"db":       {"dumbbell", "dumbell"},
		"bb":       {"barbell", "barbel"},
		"machine":  {"lever", "smith"},
		"cable":    {"cables", "pulley"},
		"lat":      {"lats", "latissimus"},
		"bi":       {"bicep", "biceps"},
		"tri":      {"tricep", "triceps"},
		"leg":      {"legs", "quads", "quadriceps"},
		"chest":    {"pec", "pecs", "pectorals"},
		"back":     {"rhomboids", "trapezius"},
		"shoulder": {"shoulders", "delt", "delts", "deltoid"},
	}
}
