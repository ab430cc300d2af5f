package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bodul/crossword/puzzle"
)

var (
	errUnknownAction = errors.New("unknown action")
	errBadAction     = errors.New("invalid action")
)

// Action is one host event delivered to a session, over HTTP or WebSocket.
type Action struct {
	Type      string `json:"type"`
	Key       string `json:"key,omitempty"`
	Ctrl      bool   `json:"ctrl,omitempty"`
	Alt       bool   `json:"alt,omitempty"`
	Meta      bool   `json:"meta,omitempty"`
	Text      string `json:"text,omitempty"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Direction string `json:"direction,omitempty"`
	Number    string `json:"number,omitempty"`
	Value     string `json:"value,omitempty"`
}

func (a Action) modifiers() puzzle.Modifiers {
	var m puzzle.Modifiers
	if a.Ctrl {
		m |= puzzle.ModCtrl
	}
	if a.Alt {
		m |= puzzle.ModAlt
	}
	if a.Meta {
		m |= puzzle.ModMeta
	}
	return m
}

// SessionState is what clients render from.
type SessionState struct {
	ID        string           `json:"id"`
	PuzzleID  string           `json:"puzzle_id"`
	Title     string           `json:"title"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
	Grid      puzzle.Grid      `json:"grid"`
	Clues     puzzle.Clues     `json:"clues"`
	Selection puzzle.Selection `json:"selection"`
	Focused   bool             `json:"focused"`
	Complete  bool             `json:"complete"`
	Correct   bool             `json:"correct"`
}

// GameSession is one player's crossword. The mutex serializes events so
// the state machine sees them one at a time, in arrival order.
type GameSession struct {
	ID         string    `json:"id"`
	PuzzleID   string    `json:"puzzle_id"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`

	title string
	mu    sync.Mutex
	cw    *puzzle.Crossword
}

// GameConfig carries what a session needs besides its puzzle.
type GameConfig struct {
	Storage        puzzle.Storage
	StorageKey     string
	AllowNonSquare bool
	// Emit receives every notification of the session as a JSON-ready event.
	Emit func(sessionID string, evt map[string]any)
}

func newGameSession(id string, p *Puzzle, cfg GameConfig) (*GameSession, error) {
	emit := func(evt map[string]any) {
		if cfg.Emit != nil {
			cfg.Emit(id, evt)
		}
	}

	key := cfg.StorageKey
	if key == "" {
		key = "puzzle:" + p.ID
	}

	cw, err := puzzle.New(p.Clues, puzzle.Options{
		AllowNonSquare: cfg.AllowNonSquare,
		Storage:        cfg.Storage,
		StorageKey:     key,
		Callbacks:      sessionCallbacks(emit),
	})
	if err != nil {
		return nil, fmt.Errorf("start session on %s: %w", p.ID, err)
	}
	cw.RegisterFocusHandler(func() {
		emit(map[string]any{"type": "focus"})
	})

	return &GameSession{
		ID:         id,
		PuzzleID:   p.ID,
		StorageKey: key,
		CreatedAt:  time.Now(),
		title:      p.Title,
		cw:         cw,
	}, nil
}

// sessionCallbacks turns every crossword notification into an event.
func sessionCallbacks(emit func(map[string]any)) puzzle.Callbacks {
	return puzzle.Callbacks{
		CellChange: func(row, col int, char string) {
			emit(map[string]any{"type": "cell_change", "row": row, "col": col, "value": char})
		},
		AnswerComplete: func(dir puzzle.Direction, number string, correct bool, answer string) {
			emit(map[string]any{"type": "answer_complete", "direction": dir, "number": number, "correct": correct, "answer": answer})
		},
		AnswerCorrect: func(dir puzzle.Direction, number, answer string) {
			emit(map[string]any{"type": "answer_correct", "direction": dir, "number": number, "answer": answer})
		},
		AnswerIncorrect: func(dir puzzle.Direction, number, answer string) {
			emit(map[string]any{"type": "answer_incorrect", "direction": dir, "number": number, "answer": answer})
		},
		LoadedCorrect: func(answers []puzzle.SolvedAnswer) {
			emit(map[string]any{"type": "loaded_correct", "answers": answers})
		},
		CrosswordComplete: func(complete bool) {
			emit(map[string]any{"type": "crossword_complete", "complete": complete})
		},
		CrosswordCorrect: func(correct bool) {
			emit(map[string]any{"type": "crossword_correct", "correct": correct})
		},
		ClueSelected: func(dir puzzle.Direction, number string) {
			emit(map[string]any{"type": "clue_selected", "direction": dir, "number": number})
		},
	}
}

// Apply runs one action. It reports whether the action was handled; keys
// the crossword ignores and unknown clues come back false without error.
func (g *GameSession) Apply(a Action) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cw := g.cw
	switch a.Type {
	case "key":
		return cw.HandleKey(a.Key, a.modifiers()), nil
	case "input":
		cw.HandleText(a.Text)
	case "click":
		cw.HandleCellClick(a.Row, a.Col)
	case "input-click":
		cw.HandleInputClick()
	case "clue":
		dir, err := puzzle.ParseDirection(a.Direction)
		if err != nil {
			return false, fmt.Errorf("%w: %v", errBadAction, err)
		}
		return cw.HandleClueSelected(dir, a.Number), nil
	case "guess":
		value, err := normalizeGuess(a.Value)
		if err != nil {
			return false, err
		}
		if err := cw.SetGuess(a.Row, a.Col, value); err != nil {
			return false, err
		}
	case "reset":
		cw.Reset()
	case "fill":
		cw.FillAllAnswers()
	case "focus":
		cw.Focus()
	case "blur":
		cw.Blur()
	default:
		return false, fmt.Errorf("%w: %q", errUnknownAction, a.Type)
	}
	return true, nil
}

// normalizeGuess accepts one letter or nothing (erase).
func normalizeGuess(v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return v, nil
	}
	r, size := utf8.DecodeRuneInString(v)
	if size != len(v) || !unicode.IsLetter(r) {
		return "", fmt.Errorf("%w: guess %q must be a single letter", errBadAction, v)
	}
	return v, nil
}

// State returns a snapshot of the session.
func (g *GameSession) State() SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows, cols := g.cw.Size()
	return SessionState{
		ID:        g.ID,
		PuzzleID:  g.PuzzleID,
		Title:     g.title,
		Rows:      rows,
		Cols:      cols,
		Grid:      g.cw.Grid(),
		Clues:     g.cw.Clues(),
		Selection: g.cw.Selection(),
		Focused:   g.cw.Focused(),
		Complete:  g.cw.IsComplete(),
		Correct:   g.cw.IsCorrect(),
	}
}
