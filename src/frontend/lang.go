package frontend

// rw contains the set of all reserved L0 keywords, indexed by word length.
// Indexing by length before comparing strings keeps keyword lookup fast
// without needing a hash table for such a small, fixed vocabulary.
var rw = [...][]string{
	// One-grams
	{},
	// Two-grams
	{"fn", "if"},
	// Three-grams
	{"mut", "new"},
	// Four-grams
	{"else", "enum", "true", "type", "unit"},
	// Five-grams
	{"const", "false", "while"},
	// Six-grams
	{"delete", "method", "return", "struct"},
	// Seven-grams
	{},
	// Eight-grams
	{},
	// Nine-grams
	{"namespace"},
}

// isKeyword returns true if s is a reserved L0 keyword.
func isKeyword(s string) bool {
	if len(s) == 0 || len(s) > len(rw) {
		return false
	}
	for _, e1 := range rw[len(s)-1] {
		if e1 == s {
			return true
		}
	}
	return false
}
