package ipuz

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bodul/crossword/puzzle"
)

const twoClues = `{
  "version": "http://ipuz.org/v2",
  "kind": ["http://ipuz.org/crossword#1"],
  "title": "Tiny",
  "dimensions": {"width": 3, "height": 3},
  "puzzle": [
    [{"cell": 1, "style": {"shapebg": "circle"}}, 0, 2],
    ["#", "#", 0],
    ["#", "#", 0]
  ],
  "solution": [
    ["t", "W", {"value": "O"}],
    ["#", "#", "N"],
    [null, "#", "E"]
  ],
  "clues": {
    "Across": [[1, "one plus one"]],
    "Down:Vertical": [{"number": "2", "clue": "three minus two"}]
  }
}`

func TestConvert(t *testing.T) {
	got, ok := Load([]byte(twoClues))
	if !ok {
		t.Fatal("expected the document to convert")
	}
	want := puzzle.CluesInput{
		puzzle.Across: {"1": {Clue: "one plus one", Answer: "TWO", Row: 0, Col: 0}},
		puzzle.Down:   {"2": {Clue: "three minus two", Answer: "ONE", Row: 0, Col: 2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("converted clues mismatch (-want +got):\n%s", diff)
	}

	// The result feeds straight into the grid builder.
	data, err := puzzle.CreateGrid(got, false)
	if err != nil {
		t.Fatalf("CreateGrid: %v", err)
	}
	if data.Rows != 3 || data.Cols != 3 {
		t.Errorf("expected 3x3, got %dx%d", data.Rows, data.Cols)
	}
}

func TestParseStyledLayout(t *testing.T) {
	p, err := Parse([]byte(twoClues))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first := p.Puzzle[0][0]
	if first.Number != "1" || first.Block || len(first.Style) == 0 {
		t.Errorf("unexpected styled cell %+v", first)
	}
	if !p.Puzzle[1][0].Block {
		t.Error("expected (1,0) to be a block")
	}
	if p.Puzzle[0][1].Number != "" || p.Puzzle[0][1].Block {
		t.Errorf("expected (0,1) to be an empty cell, got %+v", p.Puzzle[0][1])
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name    string
		version string
		kind    []string
		want    bool
	}{
		{"v1 crossword", "http://ipuz.org/v1", []string{"http://ipuz.org/crossword#1"}, true},
		{"v2 cryptic", "http://ipuz.org/v2", []string{"http://ipuz.org/crossword/crypticcrossword#1"}, true},
		{"future version", "http://ipuz.org/v3", []string{"http://ipuz.org/crossword#1"}, false},
		{"future kind", "http://ipuz.org/v2", []string{"http://ipuz.org/crossword#2"}, false},
		{"sudoku", "http://ipuz.org/v2", []string{"http://ipuz.org/sudoku#1"}, false},
		{"no version", "", []string{"http://ipuz.org/crossword#1"}, false},
		{"no kind", "http://ipuz.org/v2", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Puzzle{Version: tt.version, Kind: tt.kind}
			if got := p.Supported(); got != tt.want {
				t.Errorf("Supported() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnsupportedIsNoData(t *testing.T) {
	sudoku := `{"version": "http://ipuz.org/v2", "kind": ["http://ipuz.org/sudoku#1"], "puzzle": [], "solution": []}`
	if got, ok := Load([]byte(sudoku)); ok || got != nil {
		t.Errorf("expected no data for a sudoku, got %v", got)
	}
	if got, ok := Load([]byte("not json")); ok || got != nil {
		t.Errorf("expected no data for garbage, got %v", got)
	}
	empty := `{"version": "http://ipuz.org/v2", "kind": ["http://ipuz.org/crossword#1"], "puzzle": [[0]], "solution": [["A"]], "clues": {}}`
	if _, ok := Load([]byte(empty)); ok {
		t.Error("expected no data when there are no clues")
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"puzzle": [[true]]}`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestCustomBlockAndRebus(t *testing.T) {
	doc := `{
	  "version": "http://ipuz.org/v2",
	  "kind": ["http://ipuz.org/crossword#1"],
	  "block": "*",
	  "puzzle": [[1, 0, "*", 2, 0]],
	  "solution": [["A", "B", "*", "CD", "E"]],
	  "clues": {"Across": [[1, "first"], [2, "rebus"], [3, "missing"]], "Diagonal": [[1, "nope"]]}
	}`
	got, ok := Load([]byte(doc))
	if !ok {
		t.Fatal("expected the document to convert")
	}
	if diff := cmp.Diff(map[string]puzzle.ClueEntry{"1": {Clue: "first", Answer: "AB"}}, got[puzzle.Across]); diff != "" {
		t.Errorf("across clues mismatch (-want +got):\n%s", diff)
	}
	if len(got[puzzle.Down]) != 0 {
		t.Errorf("expected no down clues, got %v", got[puzzle.Down])
	}
}
