package form

// selectItem is the list item behind a select field.
type selectItem struct {
	label string
	index int
}

func (i selectItem) FilterValue() string { return i.label }
