package pricing

// Selection is an ordered, duplicate-free sequence of modifier ids. Insertion
// order is significant: it determines which add-on counts as the first one
// for the discount preview, so the type must never reorder its elements.
type Selection []string

// Contains reports whether the id is currently selected.
func (s Selection) Contains(id string) bool {
	for _, existing := range s {
		if existing == id {
			return true
		}
	}
	return false
}

// Toggle returns a new selection with the id appended when absent or removed
// when present. Toggling the same id twice restores the original selection.
func (s Selection) Toggle(id string) Selection {
	if s.Contains(id) {
		out := make(Selection, 0, len(s)-1)
		for _, existing := range s {
			if existing != id {
				out = append(out, existing)
			}
		}
		return out
	}
	out := make(Selection, len(s), len(s)+1)
	copy(out, s)
	return append(out, id)
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	copy(out, s)
	return out
}
