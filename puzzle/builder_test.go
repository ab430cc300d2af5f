package puzzle

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func twoClueInput() CluesInput {
	return CluesInput{
		Across: {
			"1": {Clue: "one plus one", Answer: "TWO", Row: 0, Col: 0},
		},
		Down: {
			"2": {Clue: "three minus two", Answer: "ONE", Row: 0, Col: 2},
		},
	}
}

func TestCreateGridTwoClues(t *testing.T) {
	data, err := CreateGrid(twoClueInput(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Rows != 3 || data.Cols != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", data.Rows, data.Cols)
	}

	first, ok := data.Grid[0][0].(*UsedCell)
	if !ok {
		t.Fatal("expected (0,0) to be used")
	}
	want := &UsedCell{Row: 0, Col: 0, Answer: "T", Number: "1", Across: "1"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("cell (0,0) mismatch (-want +got):\n%s", diff)
	}

	corner, ok := data.Grid[0][2].(*UsedCell)
	if !ok {
		t.Fatal("expected (0,2) to be used")
	}
	want = &UsedCell{Row: 0, Col: 2, Answer: "O", Number: "2", Across: "1", Down: "2"}
	if diff := cmp.Diff(want, corner); diff != "" {
		t.Errorf("cell (0,2) mismatch (-want +got):\n%s", diff)
	}

	if data.Grid[1][0].Used() {
		t.Error("expected (1,0) to be unused")
	}
	if r, c := data.Grid[2][1].Position(); r != 2 || c != 1 {
		t.Errorf("unused cell should carry its position, got (%d,%d)", r, c)
	}

	if len(data.Clues.Across) != 1 || len(data.Clues.Down) != 1 {
		t.Fatalf("expected one clue per direction, got %+v", data.Clues)
	}
	if got := data.Clues.Down[0]; got.Number != "2" || got.Answer != "ONE" || got.Row != 0 || got.Col != 2 {
		t.Errorf("unexpected down clue %+v", got)
	}
}

func TestCreateGridDeterministic(t *testing.T) {
	input := CluesInput{
		Across: {
			"1":  {Clue: "a", Answer: "cat", Row: 0, Col: 0},
			"4":  {Clue: "b", Answer: "ore", Row: 2, Col: 0},
			"10": {Clue: "c", Answer: "pen", Row: 4, Col: 0},
		},
		Down: {
			"1": {Clue: "d", Answer: "coop", Row: 0, Col: 0},
			"2": {Clue: "e", Answer: "arr", Row: 0, Col: 1},
			"3": {Clue: "f", Answer: "tie", Row: 0, Col: 2},
		},
	}
	a, err := CreateGrid(input, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 10 {
		b, err := CreateGrid(input, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("CreateGrid is not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestCreateGridSortsCluesNumerically(t *testing.T) {
	input := CluesInput{
		Across: {
			"10": {Answer: "AB", Row: 4, Col: 0},
			"2":  {Answer: "CD", Row: 2, Col: 0},
			"1":  {Answer: "EF", Row: 0, Col: 0},
		},
		Down: {},
	}
	data, err := CreateGrid(input, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for _, c := range data.Clues.Across {
		got = append(got, c.Number)
	}
	if diff := cmp.Diff([]string{"1", "2", "10"}, got); diff != "" {
		t.Errorf("clue order mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateGridUpperCasesAnswers(t *testing.T) {
	input := CluesInput{Across: {"1": {Answer: "two"}}, Down: {}}
	data, err := CreateGrid(input, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Clues.Across[0].Answer != "TWO" {
		t.Errorf("expected upper-case answer, got %q", data.Clues.Across[0].Answer)
	}
	if cell := data.Grid.used(0, 1); cell == nil || cell.Answer != "W" {
		t.Errorf("expected W at (0,1), got %+v", cell)
	}
}

func TestCreateGridSizing(t *testing.T) {
	input := CluesInput{
		Across: {"1": {Answer: "ABCDE", Row: 0, Col: 0}},
		Down:   {"1": {Answer: "AB", Row: 0, Col: 0}},
	}

	square, err := CreateGrid(input, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if square.Rows != 5 || square.Cols != 5 {
		t.Errorf("square: expected 5x5, got %dx%d", square.Rows, square.Cols)
	}

	wide, err := CreateGrid(input, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wide.Rows != 2 || wide.Cols != 5 {
		t.Errorf("non-square: expected 2x5, got %dx%d", wide.Rows, wide.Cols)
	}
}

func TestCreateGridFirstNumberWins(t *testing.T) {
	input := CluesInput{
		Across: {"1": {Answer: "AB", Row: 0, Col: 0}},
		Down:   {"7": {Answer: "AC", Row: 0, Col: 0}},
	}
	data, err := CreateGrid(input, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := data.Grid.used(0, 0).Number; got != "1" {
		t.Errorf("expected number 1 to win, got %q", got)
	}
}

func TestCreateGridRejectsConflicts(t *testing.T) {
	tests := []struct {
		name  string
		input CluesInput
	}{
		{
			name: "different letters",
			input: CluesInput{
				Across: {"1": {Answer: "AB", Row: 0, Col: 0}},
				Down:   {"1": {Answer: "XY", Row: 0, Col: 0}},
			},
		},
		{
			name: "same direction overlap",
			input: CluesInput{
				Across: {
					"1": {Answer: "ABC", Row: 0, Col: 0},
					"2": {Answer: "CD", Row: 0, Col: 2},
				},
				Down: {},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateGrid(tt.input, false)
			if !errors.Is(err, ErrConflictingAnswer) {
				t.Fatalf("expected ErrConflictingAnswer, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   CluesInput
		wantErr bool
	}{
		{"valid", twoClueInput(), false},
		{"nil", nil, true},
		{"missing down", CluesInput{Across: {}}, true},
		{"unknown direction", CluesInput{Across: {}, Down: {}, "diagonal": {}}, true},
		{"empty answer", CluesInput{Across: {"1": {Answer: ""}}, Down: {}}, true},
		{"digit in answer", CluesInput{Across: {"1": {Answer: "A1"}}, Down: {}}, true},
		{"negative row", CluesInput{Across: {"1": {Answer: "AB", Row: -1}}, Down: {}}, true},
		{"empty label", CluesInput{Across: {"": {Answer: "AB"}}, Down: {}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCluesInputJSON(t *testing.T) {
	raw := `{"across":{"1":{"clue":"one plus one","answer":"TWO","row":0,"col":0}},"down":{"2":{"clue":"three minus two","answer":"ONE","row":0,"col":2}}}`
	var input CluesInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(twoClueInput(), input); diff != "" {
		t.Errorf("decoded input mismatch (-want +got):\n%s", diff)
	}
}

func TestGridJSONDiscriminant(t *testing.T) {
	data, err := CreateGrid(twoClueInput(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := json.Marshal(data.Grid)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `{"used":true,"row":0,"col":0,"answer":"T","guess":"","number":"1","across":"1"}`) {
		t.Errorf("used cell not encoded as expected: %s", s)
	}
	if !strings.Contains(s, `{"used":false,"row":1,"col":0}`) {
		t.Errorf("unused cell not encoded as expected: %s", s)
	}
}

func TestCompareLabels(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "2", -1},
		{"10", "9", 1},
		{"3", "3", 0},
		{"3", "A", -1},
		{"B", "A", 1},
	}
	for _, tt := range tests {
		got := compareLabels(tt.a, tt.b)
		if (got < 0 && tt.want >= 0) || (got > 0 && tt.want <= 0) || (got == 0 && tt.want != 0) {
			t.Errorf("compareLabels(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestGridJSONRoundTrip(t *testing.T) {
	data, err := CreateGrid(twoClueInput(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data.Grid.used(0, 1).Guess = "W"

	out, err := json.Marshal(data.Grid)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Grid
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(data.Grid, back); diff != "" {
		t.Errorf("grid changed through JSON (-want +got):\n%s", diff)
	}
}
