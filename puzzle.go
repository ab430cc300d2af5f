package main

import (
	"time"

	"github.com/bodul/crossword/puzzle"
)

// Puzzle is a stored clue set that sessions are played on.
type Puzzle struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Source    string            `json:"source"` // "json", "ipuz" or "image"
	Rows      int               `json:"rows"`
	Cols      int               `json:"cols"`
	Clues     puzzle.CluesInput `json:"clues"`
	CreatedAt time.Time         `json:"created_at"`
}

// newPuzzle checks that clues build into a grid and records its size.
func newPuzzle(title, source string, clues puzzle.CluesInput, allowNonSquare bool) (*Puzzle, error) {
	data, err := puzzle.CreateGrid(clues, allowNonSquare)
	if err != nil {
		return nil, err
	}
	return &Puzzle{
		Title:  title,
		Source: source,
		Rows:   data.Rows,
		Cols:   data.Cols,
		Clues:  clues,
	}, nil
}
