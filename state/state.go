// Package state is the per-visitor UI state container: the current list page
// and the active tag filters, changed only by dispatching actions through
// pure reducers.
package state

// State is a snapshot of one visitor's UI state.
type State struct {
	Page int      // zero-based list page index, never clamped
	Tags []string // active tag filters, AND semantics
}

func (s State) clone() State {
	return State{Page: s.Page, Tags: cloneTags(s.Tags)}
}

// Action is a state transition request.
type Action interface {
	action()
}

// SetPage replaces the current page index.
type SetPage struct{ Page int }

// SetTags replaces the active tag filters.
type SetTags struct{ Tags []string }

// ToggleTag adds Tag to the filters, or removes it when already active.
type ToggleTag struct{ Tag string }

// ClearTags removes every tag filter.
type ClearTags struct{}

func (SetPage) action()   {}
func (SetTags) action()   {}
func (ToggleTag) action() {}
func (ClearTags) action() {}

// PageReducer is the page slice reducer.
func PageReducer(page int, a Action) int {
	if a, ok := a.(SetPage); ok {
		return a.Page
	}
	return page
}

// FilterReducer is the tag filter slice reducer. It never mutates tags.
func FilterReducer(tags []string, a Action) []string {
	switch a := a.(type) {
	case SetTags:
		return cloneTags(a.Tags)
	case ToggleTag:
		out := make([]string, 0, len(tags)+1)
		found := false
		for _, t := range tags {
			if t == a.Tag {
				found = true
				continue
			}
			out = append(out, t)
		}
		if !found {
			out = append(out, a.Tag)
		}
		return out
	case ClearTags:
		return nil
	}
	return tags
}

// Reduce applies a to s through both slice reducers.
func Reduce(s State, a Action) State {
	return State{
		Page: PageReducer(s.Page, a),
		Tags: FilterReducer(s.Tags, a),
	}
}

// TagsEqual reports whether a and b hold the same tags in the same order.
func TagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
