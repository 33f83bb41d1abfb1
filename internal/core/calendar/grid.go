package calendar

import "time"

// GridCells is the fixed size of a month grid: six full Monday-first weeks.
const GridCells = 42

// Cell is one day in a month grid.
type Cell struct {
	Date    Date
	InMonth bool
}

// Grid is a month laid out for calendar rendering.
type Grid struct {
	Year  int
	Month time.Month
	Cells [GridCells]Cell
}

// MonthGrid builds the 42-cell grid for a month. The first cell is the Monday
// on or before the 1st; the grid always spans six weeks regardless of how
// many days the month has.
func MonthGrid(year int, month time.Month) Grid {
	first := NewDate(year, month, 1)
	g := Grid{Year: first.Year, Month: first.Month}

	start := StartOfWeek(first)
	for i := range GridCells {
		d := start.AddDays(i)
		g.Cells[i] = Cell{
			Date:    d,
			InMonth: d.Year == g.Year && d.Month == g.Month,
		}
	}
	return g
}

// Weeks returns the grid as six rows of seven cells.
func (g Grid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, GridCells/7)
	for i := 0; i < GridCells; i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}
