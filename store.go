package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bodul/crossword/puzzle"
)

// Store holds puzzles and game sessions in memory. Guesses live in the
// backend so progress on a puzzle outlives its sessions.
type Store struct {
	mu      sync.RWMutex
	puzzles map[string]*Puzzle
	games   map[string]*GameSession

	backend        puzzle.Storage
	allowNonSquare bool
}

// NewStore creates an empty store. A nil backend keeps guesses in the
// session only.
func NewStore(backend puzzle.Storage, allowNonSquare bool) *Store {
	return &Store{
		puzzles:        make(map[string]*Puzzle),
		games:          make(map[string]*GameSession),
		backend:        backend,
		allowNonSquare: allowNonSquare,
	}
}

// AddPuzzle validates clues and stores them as a new puzzle.
func (s *Store) AddPuzzle(title, source string, clues puzzle.CluesInput) (*Puzzle, error) {
	p, err := newPuzzle(title, source, clues, s.allowNonSquare)
	if err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()

	s.mu.Lock()
	s.puzzles[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

// GetPuzzle returns a puzzle by ID, or nil if not found.
func (s *Store) GetPuzzle(id string) *Puzzle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puzzles[id]
}

// ListPuzzles returns all puzzles, most recent first.
func (s *Store) ListPuzzles() []*Puzzle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Puzzle, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		list = append(list, p)
	}
	// Insertion sort on CreatedAt, newest first.
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].CreatedAt.After(list[j-1].CreatedAt); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
	return list
}

// CreateGame starts a session on a puzzle. Notifications of the session are
// passed to emit tagged with the session ID.
func (s *Store) CreateGame(puzzleID, storageKey string, emit func(sessionID string, evt map[string]any)) (*GameSession, error) {
	p := s.GetPuzzle(puzzleID)
	if p == nil {
		return nil, fmt.Errorf("puzzle not found: %s", puzzleID)
	}

	game, err := newGameSession(uuid.NewString(), p, GameConfig{
		Storage:        s.backend,
		StorageKey:     storageKey,
		AllowNonSquare: s.allowNonSquare,
		Emit:           emit,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[game.ID] = game
	s.mu.Unlock()

	return game, nil
}

// GetGame returns a game session by ID, or nil if not found.
func (s *Store) GetGame(id string) *GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

// ListGames returns all game sessions.
func (s *Store) ListGames() []*GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*GameSession, 0, len(s.games))
	for _, g := range s.games {
		list = append(list, g)
	}
	return list
}
