// Package window computes which slice of a scrollable list is visible.
//
// Every scrollable pane (change tree, unified rows, side-by-side rows) goes
// through Visible so scrolling feels identical everywhere.
package window

// Visible returns the half-open range [start, end) of items to display so the
// selection stays on screen. The window is centered on the selection when
// possible and clamped at both ends; a list shorter than max is returned whole.
func Visible(total, selected, max int) (start, end int) {
	if total <= 0 || max <= 0 {
		return 0, 0
	}
	if total <= max {
		return 0, total
	}
	if selected < 0 {
		selected = 0
	}
	if selected >= total {
		selected = total - 1
	}
	start = selected - max/2
	if start < 0 {
		start = 0
	}
	if start > total-max {
		start = total - max
	}
	return start, start + max
}
