// Package ipuz converts IPUZ crossword documents into puzzle.CluesInput.
package ipuz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bodul/crossword/puzzle"
)

// Highest IPUZ version and crossword kind revision understood.
const (
	MaxVersion       = 2
	MaxCrosswordKind = 1
)

const (
	versionPrefix = "http://ipuz.org/v"
	kindPrefix    = "http://ipuz.org/crossword"
	defaultBlock  = "#"
)

// ErrMalformed is returned when the document is not valid IPUZ JSON.
var ErrMalformed = errors.New("malformed ipuz document")

// Dimensions is the grid size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Puzzle is the part of an IPUZ document needed to build clues.
type Puzzle struct {
	Version    string            `json:"version"`
	Kind       []string          `json:"kind"`
	Title      string            `json:"title,omitempty"`
	Author     string            `json:"author,omitempty"`
	Dimensions Dimensions        `json:"dimensions"`
	Block      string            `json:"block,omitempty"`
	Puzzle     [][]LayoutCell    `json:"puzzle"`
	Solution   [][]SolutionCell  `json:"solution"`
	Clues      map[string][]Clue `json:"clues"`
}

// LayoutCell is one cell of the "puzzle" grid: a clue number, an empty
// cell, a block, or an object carrying a number plus styling.
type LayoutCell struct {
	Number string
	Block  bool
	Style  json.RawMessage
}

func (c *LayoutCell) UnmarshalJSON(data []byte) error {
	*c = LayoutCell{}
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		c.Block = true
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			Cell  json.RawMessage `json:"cell"`
			Style json.RawMessage `json:"style"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		c.Style = obj.Style
		if len(obj.Cell) == 0 {
			return nil
		}
		var inner LayoutCell
		if err := inner.UnmarshalJSON(obj.Cell); err != nil {
			return err
		}
		c.Number, c.Block = inner.Number, inner.Block
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		c.setLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("layout cell %s: %w", data, err)
	}
	c.setLabel(n.String())
	return nil
}

// setLabel records s as a clue number; "#" marks a block and "0" or ""
// an empty cell. Custom block markers are resolved in Convert.
func (c *LayoutCell) setLabel(s string) {
	switch s {
	case defaultBlock:
		c.Block = true
	case "", "0":
	default:
		c.Number = s
	}
}

// SolutionCell is one solved letter; Value is empty for blocks and omitted cells.
type SolutionCell struct {
	Value string
}

func (c *SolutionCell) UnmarshalJSON(data []byte) error {
	*c = SolutionCell{}
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		c.Value = obj.Value
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &c.Value)
	}
	// Some generators write 0 for omitted cells.
	return nil
}

// Clue is either [number, "text"] or {"number": n, "clue": "text"}.
type Clue struct {
	Number string
	Text   string
}

func (c *Clue) UnmarshalJSON(data []byte) error {
	*c = Clue{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) < 2 {
			return fmt.Errorf("clue %s: expected [number, text]", data)
		}
		num, err := rawLabel(pair[0])
		if err != nil {
			return err
		}
		c.Number = num
		return json.Unmarshal(pair[1], &c.Text)
	}
	var obj struct {
		Number json.RawMessage `json:"number"`
		Clue   string          `json:"clue"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	num, err := rawLabel(obj.Number)
	if err != nil {
		return err
	}
	c.Number, c.Text = num, obj.Clue
	return nil
}

func rawLabel(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("clue number %s: %w", raw, err)
	}
	return n.String(), nil
}

// Parse decodes an IPUZ document.
func Parse(data []byte) (*Puzzle, error) {
	var p Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

// Supported reports whether the version and kind are ones Convert handles.
func (p *Puzzle) Supported() bool {
	v, ok := strings.CutPrefix(p.Version, versionPrefix)
	if !ok {
		return false
	}
	if n, err := strconv.Atoi(v); err != nil || n < 1 || n > MaxVersion {
		return false
	}
	for _, k := range p.Kind {
		rest, ok := strings.CutPrefix(k, kindPrefix)
		if !ok {
			continue
		}
		_, rev, found := strings.Cut(rest, "#")
		if !found {
			continue
		}
		if n, err := strconv.Atoi(rev); err == nil && n >= 1 && n <= MaxCrosswordKind {
			return true
		}
	}
	return false
}

func (p *Puzzle) blockMarker() string {
	if p.Block != "" {
		return p.Block
	}
	return defaultBlock
}

// Convert builds the clue input. It reports false for unsupported
// documents and for documents that yield no usable clue.
func (p *Puzzle) Convert() (puzzle.CluesInput, bool) {
	if !p.Supported() {
		return nil, false
	}

	block := p.blockMarker()
	positions := make(map[string][2]int)
	for r, row := range p.Puzzle {
		for c, cell := range row {
			if cell.Block || cell.Number == "" || cell.Number == block {
				continue
			}
			if _, seen := positions[cell.Number]; !seen {
				positions[cell.Number] = [2]int{r, c}
			}
		}
	}

	out := puzzle.CluesInput{
		puzzle.Across: make(map[string]puzzle.ClueEntry),
		puzzle.Down:   make(map[string]puzzle.ClueEntry),
	}
	n := 0
	for name, clues := range p.Clues {
		// Directions may carry a display label: "Across:Horizontal".
		dirName, _, _ := strings.Cut(name, ":")
		dir, err := puzzle.ParseDirection(dirName)
		if err != nil {
			continue
		}
		for _, clue := range clues {
			pos, ok := positions[clue.Number]
			if !ok {
				continue
			}
			answer, ok := p.answerAt(pos[0], pos[1], dir, block)
			if !ok {
				continue
			}
			out[dir][clue.Number] = puzzle.ClueEntry{
				Clue:   clue.Text,
				Answer: answer,
				Row:    pos[0],
				Col:    pos[1],
			}
			n++
		}
	}
	if n == 0 {
		return nil, false
	}
	return out, true
}

// answerAt reads the solution from (row, col) along dir until a block or
// the grid edge. Cells holding more than one letter are not supported.
func (p *Puzzle) answerAt(row, col int, dir puzzle.Direction, block string) (string, bool) {
	var b strings.Builder
	for row < len(p.Solution) && col < len(p.Solution[row]) {
		v := p.Solution[row][col].Value
		if v == "" || v == block {
			break
		}
		r, size := utf8.DecodeRuneInString(v)
		if size != len(v) || !unicode.IsLetter(r) {
			return "", false
		}
		b.WriteRune(unicode.ToUpper(r))
		if dir == puzzle.Across {
			col++
		} else {
			row++
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// Load parses and converts in one step. Anything that is not a supported
// crossword yields false.
func Load(data []byte) (puzzle.CluesInput, bool) {
	p, err := Parse(data)
	if err != nil {
		return nil, false
	}
	return p.Convert()
}
