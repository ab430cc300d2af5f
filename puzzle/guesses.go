package puzzle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultStorageKey is used when Options.StorageKey is empty.
const DefaultStorageKey = "guesses"

// Storage is the key-value backend guesses are persisted to.
// A nil Storage turns persistence into a no-op.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Guesses is the sparse "row_col" -> character form of a grid's guesses.
type Guesses map[string]string

// savedGuesses is the persisted payload.
type savedGuesses struct {
	Date    int64   `json:"date"`
	Guesses Guesses `json:"guesses"`
}

func guessKey(row, col int) string {
	return strconv.Itoa(row) + "_" + strconv.Itoa(col)
}

func parseGuessKey(key string) (row, col int, ok bool) {
	r, c, found := strings.Cut(key, "_")
	if !found {
		return 0, 0, false
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return 0, 0, false
	}
	col, err = strconv.Atoi(c)
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}

// SerializeGuesses collects every non-empty guess of the grid.
func SerializeGuesses(grid Grid) Guesses {
	out := make(Guesses)
	for _, row := range grid {
		for _, cell := range row {
			if u, ok := cell.(*UsedCell); ok && u.Guess != "" {
				out[guessKey(u.Row, u.Col)] = u.Guess
			}
		}
	}
	return out
}

// DeserializeGuesses writes guesses back into the grid. Keys that do not
// parse or fall outside the grid's used cells are ignored.
func DeserializeGuesses(grid Grid, guesses Guesses) {
	for key, guess := range guesses {
		row, col, ok := parseGuessKey(key)
		if !ok {
			continue
		}
		if cell := grid.used(row, col); cell != nil {
			cell.Guess = guess
		}
	}
}

// SaveGuesses stores the grid's guesses under key with the current time.
func SaveGuesses(s Storage, key string, grid Grid) error {
	return saveGuessesAt(s, key, grid, time.Now())
}

func saveGuessesAt(s Storage, key string, grid Grid, now time.Time) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(savedGuesses{
		Date:    now.UnixMilli(),
		Guesses: SerializeGuesses(grid),
	})
	if err != nil {
		return fmt.Errorf("encode guesses: %w", err)
	}
	if err := s.Set(key, string(data)); err != nil {
		return fmt.Errorf("save guesses %q: %w", key, err)
	}
	return nil
}

// LoadGuesses returns the guesses stored under key, or nil if there are none.
func LoadGuesses(s Storage, key string) (Guesses, error) {
	if s == nil {
		return nil, nil
	}
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load guesses %q: %w", key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var saved savedGuesses
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return nil, fmt.Errorf("decode guesses %q: %w", key, err)
	}
	return saved.Guesses, nil
}

// ClearGuesses removes whatever is stored under key.
func ClearGuesses(s Storage, key string) error {
	if s == nil {
		return nil
	}
	if err := s.Remove(key); err != nil {
		return fmt.Errorf("clear guesses %q: %w", key, err)
	}
	return nil
}
