package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// center lays box over the middle of a width x height screen drawn from
// body. With an unknown size the box goes under the body.
func center(body, box string, width, height int) string {
	if width <= 0 || height <= 0 {
		return body + "\n\n" + box
	}
	x := max((width-lipgloss.Width(box))/2, 0)
	y := max((height-lipgloss.Height(box))/2, 0)
	return stamp(body, box, x, y, width)
}

// stamp writes every line of box into body starting at column x of row y.
// Body rows are grown as needed; cells left and right of the box keep their
// styling.
func stamp(body, box string, x, y, width int) string {
	rows := strings.Split(body, "\n")
	boxRows := strings.Split(box, "\n")
	if short := y + len(boxRows) - len(rows); short > 0 {
		rows = append(rows, make([]string, short)...)
	}
	boxWidth := lipgloss.Width(box)

	for i, line := range boxRows {
		row := padTo(rows[y+i], width)
		left := padTo(ansi.Truncate(row, x, ""), x)
		right := ansi.TruncateLeft(row, x+boxWidth, "")
		rows[y+i] = left + padTo(line, boxWidth) + right
	}
	return strings.Join(rows, "\n")
}

// padTo right-fills s with spaces up to n cells; wider strings are untouched.
func padTo(s string, n int) string {
	if gap := n - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
