package terminology

import "strings"

// Match returns the entries of corpus that contain term, in corpus order.
// NAMASTE name, ICD name and synonyms are compared case-insensitively; the
// vernacular name is compared as-is. An empty term matches every entry.
func Match(term string, corpus []Entry) []Entry {
	folded := strings.ToLower(term)
	out := []Entry{}
	for _, e := range corpus {
		if matches(e, term, folded) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e Entry, term, folded string) bool {
	if strings.Contains(strings.ToLower(e.NamasteName), folded) ||
		strings.Contains(strings.ToLower(e.ICDName), folded) ||
		strings.Contains(e.VernacularName, term) {
		return true
	}
	for _, s := range e.Synonyms {
		if strings.Contains(strings.ToLower(s), folded) {
			return true
		}
	}
	return false
}
