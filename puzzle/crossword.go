package puzzle

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidGuess is returned for guesses longer than one character.
var ErrInvalidGuess = errors.New("guess must be a single character")

// Callbacks are the optional notifications a Crossword emits. All of them
// run synchronously on the goroutine that triggered them.
type Callbacks struct {
	CellChange        func(row, col int, char string)
	AnswerComplete    func(dir Direction, number string, correct bool, answer string)
	AnswerCorrect     func(dir Direction, number, answer string)
	AnswerIncorrect   func(dir Direction, number, answer string)
	LoadedCorrect     func(answers []SolvedAnswer)
	CrosswordComplete func(complete bool)
	CrosswordCorrect  func(correct bool)
	ClueSelected      func(dir Direction, number string)
}

// Options configures a Crossword.
type Options struct {
	// AllowNonSquare sizes rows and columns independently.
	AllowNonSquare bool
	// Storage enables guess persistence when non-nil.
	Storage    Storage
	StorageKey string
	// Logger defaults to log.Default().
	Logger    *log.Logger
	Callbacks Callbacks
}

// Crossword is the interaction state machine for one puzzle. It owns the
// grid, the clue states and the selection. It is not safe for concurrent
// use; hosts deliver events one at a time.
type Crossword struct {
	opts   Options
	logger *log.Logger

	rows, cols int
	grid       Grid
	clues      Clues

	sel          Selection
	focused      bool
	focusHandler func()

	complete bool
	correct  bool
}

// New builds the grid for input and restores persisted guesses.
func New(input CluesInput, opts Options) (*Crossword, error) {
	cw := &Crossword{opts: opts, logger: opts.Logger}
	if cw.logger == nil {
		cw.logger = log.Default()
	}
	if err := cw.Load(input); err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *Crossword) storageKey() string {
	if cw.opts.StorageKey != "" {
		return cw.opts.StorageKey
	}
	return DefaultStorageKey
}

// Load rebuilds everything from input. Focus is dropped and the selection
// moves to the start of the first answer.
func (cw *Crossword) Load(input CluesInput) error {
	data, err := CreateGrid(input, cw.opts.AllowNonSquare)
	if err != nil {
		return err
	}

	cw.rows, cw.cols = data.Rows, data.Cols
	cw.grid = data.Grid
	cw.clues = data.Clues
	cw.focused = false
	cw.complete, cw.correct = false, false
	cw.sel = cw.initialSelection()

	var loaded []SolvedAnswer
	if cw.opts.Storage != nil {
		guesses, err := LoadGuesses(cw.opts.Storage, cw.storageKey())
		if err != nil {
			cw.logger.Printf("crossword: ignoring saved guesses: %v", err)
		} else if len(guesses) > 0 {
			DeserializeGuesses(cw.grid, guesses)
			loaded = cw.checkAllAnswers()
		}
	}

	if len(loaded) > 0 && cw.opts.Callbacks.LoadedCorrect != nil {
		cw.opts.Callbacks.LoadedCorrect(loaded)
	}
	cw.updateCompletion()
	return nil
}

func (cw *Crossword) initialSelection() Selection {
	if info := cw.clues.find(Across, "1"); info != nil {
		return Selection{Row: info.Row, Col: info.Col, Direction: Across, Number: "1"}
	}
	for _, dir := range Directions {
		if list := cw.clues.List(dir); len(list) > 0 {
			return Selection{Row: list[0].Row, Col: list[0].Col, Direction: dir, Number: list[0].Number}
		}
	}
	return Selection{Direction: Across}
}

// Size returns the grid dimensions.
func (cw *Crossword) Size() (rows, cols int) { return cw.rows, cw.cols }

// Grid returns a copy of the current grid.
func (cw *Crossword) Grid() Grid { return cw.grid.clone() }

// Clues returns a copy of the clue states.
func (cw *Crossword) Clues() Clues { return cw.clues.clone() }

// Selection returns the current selection.
func (cw *Crossword) Selection() Selection { return cw.sel }

// Focused reports whether the host currently has input focus.
func (cw *Crossword) Focused() bool { return cw.focused }

// CurrentClue returns the clue the selection belongs to.
func (cw *Crossword) CurrentClue() (ClueState, bool) {
	info := cw.clues.find(cw.sel.Direction, cw.sel.Number)
	if info == nil {
		return ClueState{}, false
	}
	return *info, true
}

// IsComplete reports whether every answer has been filled in.
func (cw *Crossword) IsComplete() bool { return cw.complete }

// IsCorrect reports whether every answer is filled in correctly.
func (cw *Crossword) IsCorrect() bool { return cw.correct }

// GetCell returns a copy of the cell at (row, col). Positions outside the
// grid yield an UnusedCell with OutOfBounds set.
func (cw *Crossword) GetCell(row, col int) Cell {
	cell := cw.grid.Cell(row, col)
	if u, ok := cell.(*UsedCell); ok {
		cp := *u
		return &cp
	}
	return cell
}

// SetCellCharacter records char as the guess at (row, col), persists the
// grid and checks the answers crossing the cell. Writing the guess already
// present does nothing.
func (cw *Crossword) SetCellCharacter(row, col int, char string) error {
	cell := cw.grid.used(row, col)
	if cell == nil {
		return fmt.Errorf("%w: (%d, %d)", ErrUnusedCell, row, col)
	}
	if utf8.RuneCountInString(char) > 1 {
		return fmt.Errorf("%w: %q", ErrInvalidGuess, char)
	}
	if cell.Guess == char {
		return nil
	}

	cell.Guess = char
	cw.persist()
	if cw.opts.Callbacks.CellChange != nil {
		cw.opts.Callbacks.CellChange(row, col, char)
	}
	cw.checkCell(row, col)
	return nil
}

// SetGuess is SetCellCharacter for embedding applications: the guess is
// upper-cased and the selection is left alone.
func (cw *Crossword) SetGuess(row, col int, guess string) error {
	return cw.SetCellCharacter(row, col, strings.ToUpper(guess))
}

func (cw *Crossword) persist() {
	if cw.opts.Storage == nil {
		return
	}
	if err := SaveGuesses(cw.opts.Storage, cw.storageKey(), cw.grid); err != nil {
		cw.logger.Printf("crossword: %v", err)
	}
}

// MoveTo selects (row, col). An empty override keeps the current direction;
// if the cell has no answer in that direction the other one is used.
// Unused or off-grid targets leave the selection untouched.
func (cw *Crossword) MoveTo(row, col int, override Direction) (*UsedCell, bool) {
	dir := override
	if dir == "" {
		dir = cw.sel.Direction
	}
	cell := cw.grid.used(row, col)
	if cell == nil {
		return nil, false
	}
	if cell.Label(dir) == "" {
		dir = dir.Other()
	}
	cw.sel = Selection{Row: row, Col: col, Direction: dir, Number: cell.Label(dir)}
	cp := *cell
	return &cp, true
}

// MoveRelative moves by (dRow, dCol). A purely vertical move prefers down,
// a purely horizontal one across.
func (cw *Crossword) MoveRelative(dRow, dCol int) (*UsedCell, bool) {
	var dir Direction
	switch {
	case dRow != 0 && dCol == 0:
		dir = Down
	case dRow == 0 && dCol != 0:
		dir = Across
	}
	return cw.MoveTo(cw.sel.Row+dRow, cw.sel.Col+dCol, dir)
}

// MoveForward steps one cell along the current direction.
func (cw *Crossword) MoveForward() (*UsedCell, bool) {
	dRow, dCol := cw.sel.Direction.delta()
	return cw.MoveRelative(dRow, dCol)
}

// MoveBackward steps one cell against the current direction.
func (cw *Crossword) MoveBackward() (*UsedCell, bool) {
	dRow, dCol := cw.sel.Direction.delta()
	return cw.MoveRelative(-dRow, -dCol)
}

// HandleCharacterInput types char into the selected cell and advances.
func (cw *Crossword) HandleCharacterInput(char string) {
	if cw.grid.used(cw.sel.Row, cw.sel.Col) == nil {
		return
	}
	if err := cw.SetCellCharacter(cw.sel.Row, cw.sel.Col, strings.ToUpper(char)); err != nil {
		cw.logger.Printf("crossword: %v", err)
		return
	}
	cw.MoveForward()
}

// HandleText types pasted text one character at a time, as if each were
// a key press. Whitespace and control characters are skipped.
func (cw *Crossword) HandleText(text string) {
	for _, r := range text {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			continue
		}
		cw.HandleCharacterInput(string(r))
	}
}

// ToggleDirection switches to the other direction if the selected cell has
// an answer there.
func (cw *Crossword) ToggleDirection() bool {
	cell := cw.grid.used(cw.sel.Row, cw.sel.Col)
	if cell == nil {
		return false
	}
	other := cw.sel.Direction.Other()
	number := cell.Label(other)
	if number == "" {
		return false
	}
	cw.sel.Direction = other
	cw.sel.Number = number
	return true
}

func (cw *Crossword) clearSelected() {
	if cw.grid.used(cw.sel.Row, cw.sel.Col) == nil {
		return
	}
	if err := cw.SetCellCharacter(cw.sel.Row, cw.sel.Col, ""); err != nil {
		cw.logger.Printf("crossword: %v", err)
	}
}

// moveToAnswerEdge jumps to the first or last cell of the current answer.
func (cw *Crossword) moveToAnswerEdge(end bool) {
	info := cw.clues.find(cw.sel.Direction, cw.sel.Number)
	if info == nil {
		return
	}
	row, col := info.Row, info.Col
	if end {
		n := utf8.RuneCountInString(info.Answer) - 1
		dRow, dCol := cw.sel.Direction.delta()
		row, col = row+n*dRow, col+n*dCol
	}
	cw.MoveTo(row, col, "")
}

// HandleCellClick selects the clicked cell. Clicking the focused cell again
// flips direction when the cell has answers both ways. Focus is always
// requested.
func (cw *Crossword) HandleCellClick(row, col int) {
	if cell := cw.grid.used(row, col); cell != nil {
		dir := cw.sel.Direction
		other := dir.Other()
		same := cw.focused && row == cw.sel.Row && col == cw.sel.Col
		if cell.Label(dir) == "" || (same && cell.Label(other) != "") {
			dir = other
		}
		cw.sel = Selection{Row: row, Col: col, Direction: dir, Number: cell.Label(dir)}
	}
	cw.Focus()
}

// HandleInputClick is a click on the input area, which always sits on the
// selected cell.
func (cw *Crossword) HandleInputClick() {
	if cell := cw.grid.used(cw.sel.Row, cw.sel.Col); cell != nil {
		dir := cw.sel.Direction
		other := dir.Other()
		if cell.Label(dir) == "" || (cw.focused && cell.Label(other) != "") {
			dir = other
		}
		cw.sel.Direction = dir
		cw.sel.Number = cell.Label(dir)
	}
	cw.Focus()
}

// HandleClueSelected moves to the start of a clue's answer. Unknown clues
// are ignored and report false.
func (cw *Crossword) HandleClueSelected(dir Direction, number string) bool {
	info := cw.clues.find(dir, number)
	if info == nil {
		return false
	}
	cw.MoveTo(info.Row, info.Col, dir)
	cw.Focus()
	if cw.opts.Callbacks.ClueSelected != nil {
		cw.opts.Callbacks.ClueSelected(dir, number)
	}
	return true
}

// RegisterFocusHandler sets the function the host uses to take input focus.
func (cw *Crossword) RegisterFocusHandler(fn func()) {
	cw.focusHandler = fn
}

// Focus asks the host for input focus.
func (cw *Crossword) Focus() {
	if cw.focusHandler == nil {
		cw.logger.Printf("crossword: focus requested but no focus handler is registered")
		return
	}
	cw.focusHandler()
	cw.focused = true
}

// Blur records that the host lost focus. The selection is kept.
func (cw *Crossword) Blur() {
	cw.focused = false
}

// Reset clears every guess and clue flag, and the persisted guesses.
func (cw *Crossword) Reset() {
	for _, row := range cw.grid {
		for _, cell := range row {
			if u, ok := cell.(*UsedCell); ok {
				u.Guess = ""
			}
		}
	}
	for _, dir := range Directions {
		list := cw.clues.List(dir)
		for i := range list {
			list[i].Complete, list[i].Correct = false, false
		}
	}
	if err := ClearGuesses(cw.opts.Storage, cw.storageKey()); err != nil {
		cw.logger.Printf("crossword: %v", err)
	}
	cw.updateCompletion()
}

// FillAllAnswers reveals the whole solution and reports every answer
// through a single LoadedCorrect notification.
func (cw *Crossword) FillAllAnswers() {
	for _, row := range cw.grid {
		for _, cell := range row {
			if u, ok := cell.(*UsedCell); ok {
				u.Guess = u.Answer
			}
		}
	}

	var solved []SolvedAnswer
	for _, dir := range Directions {
		list := cw.clues.List(dir)
		for i := range list {
			list[i].Complete, list[i].Correct = true, true
			solved = append(solved, SolvedAnswer{Direction: dir, Number: list[i].Number, Answer: list[i].Answer})
		}
	}
	cw.persist()

	if cw.opts.Callbacks.LoadedCorrect != nil {
		cw.opts.Callbacks.LoadedCorrect(solved)
	}
	cw.updateCompletion()
}
