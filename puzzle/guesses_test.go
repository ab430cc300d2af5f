package puzzle

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// mapStorage is an in-memory Storage for tests.
type mapStorage struct {
	data   map[string]string
	failOn string
}

func newMapStorage() *mapStorage {
	return &mapStorage{data: make(map[string]string)}
}

var errStorage = errors.New("storage down")

func (m *mapStorage) Get(key string) (string, bool, error) {
	if m.failOn == "get" {
		return "", false, errStorage
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStorage) Set(key, value string) error {
	if m.failOn == "set" {
		return errStorage
	}
	m.data[key] = value
	return nil
}

func (m *mapStorage) Remove(key string) error {
	if m.failOn == "remove" {
		return errStorage
	}
	delete(m.data, key)
	return nil
}

func mustGrid(t *testing.T) Grid {
	t.Helper()
	data, err := CreateGrid(twoClueInput(), false)
	if err != nil {
		t.Fatalf("CreateGrid: %v", err)
	}
	return data.Grid
}

func TestSerializeGuesses(t *testing.T) {
	grid := mustGrid(t)
	grid.used(0, 0).Guess = "T"
	grid.used(2, 2).Guess = "E"

	got := SerializeGuesses(grid)
	want := Guesses{"0_0": "T", "2_2": "E"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("serialized guesses mismatch (-want +got):\n%s", diff)
	}
}

func TestGuessesRoundTrip(t *testing.T) {
	grid := mustGrid(t)
	grid.used(0, 0).Guess = "T"
	grid.used(0, 1).Guess = "X"
	grid.used(1, 2).Guess = "N"

	fresh := mustGrid(t)
	DeserializeGuesses(fresh, SerializeGuesses(grid))
	if diff := cmp.Diff(grid, fresh); diff != "" {
		t.Errorf("round trip changed the grid (-want +got):\n%s", diff)
	}
}

func TestDeserializeIgnoresBadKeys(t *testing.T) {
	grid := mustGrid(t)
	DeserializeGuesses(grid, Guesses{
		"9_9":   "Z", // grid shrank
		"1_0":   "Q", // unused cell
		"bogus": "Q",
		"0_x":   "Q",
		"0_1":   "W",
	})
	if got := SerializeGuesses(grid); !cmp.Equal(got, Guesses{"0_1": "W"}) {
		t.Errorf("expected only the in-range guess to be applied, got %v", got)
	}
}

func TestSaveLoadClearGuesses(t *testing.T) {
	s := newMapStorage()
	grid := mustGrid(t)
	grid.used(0, 0).Guess = "T"

	now := time.UnixMilli(1700000000000)
	if err := saveGuessesAt(s, "k", grid, now); err != nil {
		t.Fatalf("save: %v", err)
	}

	var saved savedGuesses
	if err := json.Unmarshal([]byte(s.data["k"]), &saved); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if saved.Date != 1700000000000 {
		t.Errorf("expected date to be stored, got %d", saved.Date)
	}

	got, err := LoadGuesses(s, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cmp.Equal(got, Guesses{"0_0": "T"}) {
		t.Errorf("unexpected loaded guesses %v", got)
	}

	if err := ClearGuesses(s, "k"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = LoadGuesses(s, "k")
	if err != nil || got != nil {
		t.Fatalf("expected nothing after clear, got %v, %v", got, err)
	}
}

func TestGuessPersistenceWithoutStorage(t *testing.T) {
	grid := mustGrid(t)
	if err := SaveGuesses(nil, "k", grid); err != nil {
		t.Errorf("save without storage: %v", err)
	}
	if g, err := LoadGuesses(nil, "k"); g != nil || err != nil {
		t.Errorf("load without storage: %v, %v", g, err)
	}
	if err := ClearGuesses(nil, "k"); err != nil {
		t.Errorf("clear without storage: %v", err)
	}
}

func TestLoadGuessesErrors(t *testing.T) {
	s := newMapStorage()
	s.data["k"] = "not json"
	if _, err := LoadGuesses(s, "k"); err == nil {
		t.Error("expected decode error")
	}

	s.failOn = "get"
	if _, err := LoadGuesses(s, "k"); !errors.Is(err, errStorage) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}
