package listing

// Selection is the set of selected record identifiers. It is keyed by
// identifier so it survives page navigation and re-filtering.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle adds id when checked is true and removes it otherwise.
func (s *Selection) Toggle(id string, checked bool) {
	if checked {
		s.ids[id] = struct{}{}
		return
	}
	delete(s.ids, id)
}

// ToggleAllVisible adds every id in visible when checked is true. When
// checked is false only the ids in visible are removed; selections made
// on other pages are kept.
func (s *Selection) ToggleAllVisible(checked bool, visible []string) {
	for _, id := range visible {
		s.Toggle(id, checked)
	}
}

// AllVisibleSelected reports whether visible is non-empty and every id in
// it is selected.
func (s *Selection) AllVisibleSelected(visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in the order they appear in order. Ids
// not present in order are appended at the end in no particular order.
func (s *Selection) IDs(order []string) []string {
	out := make([]string, 0, len(s.ids))
	seen := make(map[string]struct{}, len(s.ids))
	for _, id := range order {
		if s.Has(id) {
			out = append(out, id)
			seen[id] = struct{}{}
		}
	}
	for id := range s.ids {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Clear removes every id.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}
