// Package core holds small rendering helpers shared by the grid components.
package core

// HeaderClass returns the header style for a column's sort state.
func HeaderClass(state string) string {
	if state != "" {
		return "bg-blue-50 text-blue-700 border-b-2 border-blue-600 font-medium"
	}
	return "text-slate-600 hover:text-slate-900"
}

// AriaSort maps a sort state to the aria-sort attribute value.
func AriaSort(state string) string {
	switch state {
	case "asc":
		return "ascending"
	case "desc":
		return "descending"
	}
	return "none"
}

// NextAscending reports the direction a header click should request.
// An ascending column flips to descending; anything else sorts ascending.
func NextAscending(state string) bool {
	return state != "asc"
}

// SortIndicator is the arrow shown next to a sorted header.
func SortIndicator(state string) string {
	switch state {
	case "asc":
		return "▲"
	case "desc":
		return "▼"
	}
	return ""
}
