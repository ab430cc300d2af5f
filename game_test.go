package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bodul/crossword/puzzle"
	"github.com/bodul/crossword/storage"
)

func newTestGame(t *testing.T, emit func(string, map[string]any)) *GameSession {
	t.Helper()
	p := &Puzzle{ID: "p1", Title: "Deux", Clues: twoClues()}
	game, err := newGameSession("g1", p, GameConfig{Storage: storage.NewMemory(), Emit: emit})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return game
}

func TestGameEmitsNotifications(t *testing.T) {
	var types []string
	game := newTestGame(t, func(id string, evt map[string]any) {
		if id != "g1" {
			t.Errorf("event tagged with %q", id)
		}
		types = append(types, evt["type"].(string))
	})

	for _, k := range []string{"T", "W", "O"} {
		if _, err := game.Apply(Action{Type: "key", Key: k}); err != nil {
			t.Fatalf("key %s: %v", k, err)
		}
	}

	want := []string{
		"cell_change",
		"cell_change",
		"cell_change", "answer_complete", "answer_correct",
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestGameFocusEvent(t *testing.T) {
	var types []string
	game := newTestGame(t, func(_ string, evt map[string]any) {
		types = append(types, evt["type"].(string))
	})

	game.Apply(Action{Type: "clue", Direction: "down", Number: "2"})
	if diff := cmp.Diff([]string{"focus", "clue_selected"}, types); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestGameFillAndReset(t *testing.T) {
	var types []string
	game := newTestGame(t, func(_ string, evt map[string]any) {
		types = append(types, evt["type"].(string))
	})

	game.Apply(Action{Type: "fill"})
	if diff := cmp.Diff([]string{"loaded_correct", "crossword_complete", "crossword_correct"}, types); diff != "" {
		t.Errorf("fill events mismatch (-want +got):\n%s", diff)
	}

	types = nil
	game.Apply(Action{Type: "reset"})
	if diff := cmp.Diff([]string{"crossword_complete", "crossword_correct"}, types); diff != "" {
		t.Errorf("reset events mismatch (-want +got):\n%s", diff)
	}
	if st := game.State(); st.Complete || st.Correct {
		t.Fatal("reset should clear completion")
	}
}

func TestNormalizeGuess(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"a", "A", false},
		{" é ", "É", false},
		{"", "", false},
		{"5", "", true},
		{"AB", "", true},
	}
	for _, tt := range tests {
		got, err := normalizeGuess(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("normalizeGuess(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errBadAction) {
			t.Errorf("expected errBadAction, got %v", err)
		}
		if got != tt.want {
			t.Errorf("normalizeGuess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActionModifiers(t *testing.T) {
	a := Action{Ctrl: true, Meta: true}
	if got := a.modifiers(); got != puzzle.ModCtrl|puzzle.ModMeta {
		t.Errorf("unexpected modifiers %b", got)
	}
}
