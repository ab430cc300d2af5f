package puzzle

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// GridData is the dense grid and clue lists built from a CluesInput.
type GridData struct {
	Rows  int   `json:"rows"`
	Cols  int   `json:"cols"`
	Grid  Grid  `json:"grid"`
	Clues Clues `json:"clues"`
}

// extent is the furthest row and column reached by the answers of one direction.
type extent struct {
	row, col int
}

func calculateExtent(entries map[string]ClueEntry, dir Direction) extent {
	var primaryMax, orthogonalMax int
	for _, e := range entries {
		length := utf8.RuneCountInString(strings.ToUpper(e.Answer))
		primary, orthogonal := e.Col, e.Row
		if dir == Down {
			primary, orthogonal = e.Row, e.Col
		}
		primaryMax = max(primaryMax, primary+length-1)
		orthogonalMax = max(orthogonalMax, orthogonal)
	}
	if dir == Across {
		return extent{row: orthogonalMax, col: primaryMax}
	}
	return extent{row: primaryMax, col: orthogonalMax}
}

// CreateGrid validates the input and materializes the grid. Square grids
// are the default; allowNonSquare sizes rows and columns independently.
// Clue lists come back sorted by number.
func CreateGrid(input CluesInput, allowNonSquare bool) (*GridData, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	across := calculateExtent(input[Across], Across)
	down := calculateExtent(input[Down], Down)

	var rows, cols int
	if allowNonSquare {
		rows = max(across.row, down.row) + 1
		cols = max(across.col, down.col) + 1
	} else {
		size := max(across.row, across.col, down.row, down.col) + 1
		rows, cols = size, size
	}

	grid := make(Grid, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
		for c := range grid[r] {
			grid[r][c] = UnusedCell{Row: r, Col: c}
		}
	}

	clues := Clues{Across: []ClueState{}, Down: []ClueState{}}
	for _, dir := range Directions {
		list, err := fillClues(grid, input[dir], dir)
		if err != nil {
			return nil, err
		}
		if dir == Across {
			clues.Across = list
		} else {
			clues.Down = list
		}
	}

	return &GridData{Rows: rows, Cols: cols, Grid: grid, Clues: clues}, nil
}

// fillClues walks every answer of one direction into the grid, in label
// order so that the first answer to number a cell keeps it.
func fillClues(grid Grid, entries map[string]ClueEntry, dir Direction) ([]ClueState, error) {
	labels := slices.SortedFunc(maps.Keys(entries), compareLabels)
	dRow, dCol := dir.delta()

	list := make([]ClueState, 0, len(labels))
	for _, number := range labels {
		e := entries[number]
		answer := strings.ToUpper(e.Answer)

		i := 0
		for _, r := range answer {
			row, col := e.Row+i*dRow, e.Col+i*dCol
			letter := string(r)

			cell, ok := grid[row][col].(*UsedCell)
			if !ok {
				cell = &UsedCell{Row: row, Col: col, Answer: letter}
				grid[row][col] = cell
			}
			if cell.Answer != letter {
				return nil, fmt.Errorf("%w: %s %s puts %q at (%d, %d), which already holds %q",
					ErrConflictingAnswer, number, dir, letter, row, col, cell.Answer)
			}
			if other := cell.Label(dir); other != "" {
				return nil, fmt.Errorf("%w: %s %s overlaps %s %s at (%d, %d)",
					ErrConflictingAnswer, number, dir, other, dir, row, col)
			}
			cell.setLabel(dir, number)
			if i == 0 && cell.Number == "" {
				cell.Number = number
			}
			i++
		}

		list = append(list, ClueState{
			Number: number,
			Clue:   e.Clue,
			Row:    e.Row,
			Col:    e.Col,
			Answer: answer,
		})
	}
	// Sorted already: labels were visited in order.
	return list, nil
}
