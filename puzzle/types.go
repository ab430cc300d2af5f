// Package puzzle holds the crossword model: building a dense grid from
// clue/answer definitions, persisting guesses, and the interaction state
// machine that tracks selection, typing and answer checking.
package puzzle

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// Direction is the axis an answer runs along.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// Directions lists both directions in processing order.
var Directions = [2]Direction{Across, Down}

// Other returns the opposite direction.
func (d Direction) Other() Direction {
	if d == Across {
		return Down
	}
	return Across
}

// delta is the step along the direction's primary axis.
func (d Direction) delta() (dRow, dCol int) {
	if d == Across {
		return 0, 1
	}
	return 1, 0
}

// ParseDirection accepts "across" or "down" (any case).
func ParseDirection(s string) (Direction, error) {
	switch Direction(toLowerASCII(s)) {
	case Across:
		return Across, nil
	case Down:
		return Down, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

var (
	// ErrUnusedCell is returned when a guess is written to a cell that is not part of any answer.
	ErrUnusedCell = errors.New("cannot set a character on an unused cell")
	// ErrInvalidInput wraps structural problems in a CluesInput.
	ErrInvalidInput = errors.New("invalid clues input")
	// ErrConflictingAnswer is returned when two answers disagree on a shared cell.
	ErrConflictingAnswer = errors.New("conflicting answers")
)

// ClueEntry is the input definition of one answer.
type ClueEntry struct {
	Clue   string `json:"clue"`
	Answer string `json:"answer"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// CluesInput maps each direction to its clues, keyed by clue number label.
type CluesInput map[Direction]map[string]ClueEntry

// Validate checks the structure of the input before a grid is built from it.
func (in CluesInput) Validate() error {
	if in == nil {
		return fmt.Errorf("%w: no data", ErrInvalidInput)
	}
	for dir := range in {
		if dir != Across && dir != Down {
			return fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, dir)
		}
	}
	for _, dir := range Directions {
		entries, ok := in[dir]
		if !ok || entries == nil {
			return fmt.Errorf("%w: missing %s clues", ErrInvalidInput, dir)
		}
		for number, e := range entries {
			if number == "" {
				return fmt.Errorf("%w: %s clue with empty number", ErrInvalidInput, dir)
			}
			if e.Answer == "" {
				return fmt.Errorf("%w: %s %s has an empty answer", ErrInvalidInput, number, dir)
			}
			for _, r := range e.Answer {
				if !unicode.IsLetter(r) {
					return fmt.Errorf("%w: %s %s answer %q contains %q", ErrInvalidInput, number, dir, e.Answer, r)
				}
			}
			if e.Row < 0 || e.Col < 0 {
				return fmt.Errorf("%w: %s %s starts at (%d, %d)", ErrInvalidInput, number, dir, e.Row, e.Col)
			}
		}
	}
	return nil
}

// Cell is one grid position: either a *UsedCell or an UnusedCell.
type Cell interface {
	Position() (row, col int)
	Used() bool
}

// UnusedCell is a black square. OutOfBounds is set on the synthetic cell
// returned for lookups outside the grid.
type UnusedCell struct {
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	OutOfBounds bool `json:"out_of_bounds,omitempty"`
}

func (c UnusedCell) Position() (int, int) { return c.Row, c.Col }
func (c UnusedCell) Used() bool           { return false }

func (c UnusedCell) MarshalJSON() ([]byte, error) {
	type plain UnusedCell
	return json.Marshal(struct {
		Used bool `json:"used"`
		plain
	}{false, plain(c)})
}

// UsedCell is part of at least one answer.
type UsedCell struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Answer string `json:"answer"`
	Guess  string `json:"guess"`
	Number string `json:"number,omitempty"`
	Across string `json:"across,omitempty"`
	Down   string `json:"down,omitempty"`
}

func (c *UsedCell) Position() (int, int) { return c.Row, c.Col }
func (c *UsedCell) Used() bool           { return true }

// Label returns the number of the answer covering this cell in dir, or "".
func (c *UsedCell) Label(dir Direction) string {
	if dir == Across {
		return c.Across
	}
	return c.Down
}

func (c *UsedCell) setLabel(dir Direction, number string) {
	if dir == Across {
		c.Across = number
	} else {
		c.Down = number
	}
}

func (c *UsedCell) MarshalJSON() ([]byte, error) {
	type plain UsedCell
	return json.Marshal(struct {
		Used bool `json:"used"`
		plain
	}{true, plain(*c)})
}

// Grid is a row-major array of cells.
type Grid [][]Cell

// UnmarshalJSON decodes a grid encoded by MarshalJSON, picking the cell
// variant from the "used" field.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	out := make(Grid, len(rows))
	for r, row := range rows {
		out[r] = make([]Cell, len(row))
		for c, raw := range row {
			var tag struct {
				Used bool `json:"used"`
			}
			if err := json.Unmarshal(raw, &tag); err != nil {
				return fmt.Errorf("cell (%d, %d): %w", r, c, err)
			}
			if tag.Used {
				u := &UsedCell{}
				if err := json.Unmarshal(raw, u); err != nil {
					return fmt.Errorf("cell (%d, %d): %w", r, c, err)
				}
				out[r][c] = u
				continue
			}
			var u UnusedCell
			if err := json.Unmarshal(raw, &u); err != nil {
				return fmt.Errorf("cell (%d, %d): %w", r, c, err)
			}
			out[r][c] = u
		}
	}
	*g = out
	return nil
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Cell returns the cell at (row, col), or an out-of-bounds UnusedCell.
func (g Grid) Cell(row, col int) Cell {
	if row < 0 || row >= g.Rows() || col < 0 || col >= g.Cols() {
		return UnusedCell{Row: row, Col: col, OutOfBounds: true}
	}
	return g[row][col]
}

// used returns the used cell at (row, col), or nil.
func (g Grid) used(row, col int) *UsedCell {
	c, _ := g.Cell(row, col).(*UsedCell)
	return c
}

// clone deep-copies the grid so callers cannot mutate guesses behind the state machine.
func (g Grid) clone() Grid {
	out := make(Grid, len(g))
	for r, row := range g {
		out[r] = make([]Cell, len(row))
		for c, cell := range row {
			if u, ok := cell.(*UsedCell); ok {
				cp := *u
				out[r][c] = &cp
			} else {
				out[r][c] = cell
			}
		}
	}
	return out
}

// ClueState is the runtime record of one clue.
type ClueState struct {
	Number   string `json:"number"`
	Clue     string `json:"clue"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Answer   string `json:"answer"`
	Complete bool   `json:"complete,omitempty"`
	Correct  bool   `json:"correct,omitempty"`
}

// Clues holds one sorted ClueState list per direction.
type Clues struct {
	Across []ClueState `json:"across"`
	Down   []ClueState `json:"down"`
}

// List returns the list for dir.
func (c *Clues) List(dir Direction) []ClueState {
	if dir == Across {
		return c.Across
	}
	return c.Down
}

// find returns a pointer into the list for dir, or nil.
func (c *Clues) find(dir Direction, number string) *ClueState {
	list := c.List(dir)
	for i := range list {
		if list[i].Number == number {
			return &list[i]
		}
	}
	return nil
}

func (c Clues) clone() Clues {
	return Clues{
		Across: append([]ClueState{}, c.Across...),
		Down:   append([]ClueState{}, c.Down...),
	}
}

// Selection is the focused cell and the answer it belongs to.
type Selection struct {
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Direction Direction `json:"direction"`
	Number    string    `json:"number"`
}

// SolvedAnswer is one (direction, number, answer) triple of a loaded-correct notification.
type SolvedAnswer struct {
	Direction Direction `json:"direction"`
	Number    string    `json:"number"`
	Answer    string    `json:"answer"`
}

// compareLabels orders clue numbers numerically; non-numeric labels sort
// after numeric ones, lexically.
func compareLabels(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Compare(ai, bi)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
