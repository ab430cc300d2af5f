// Command xwplay plays a crossword in the terminal.
//
//	xwplay -clues puzzle.json
//	xwplay -ipuz puzzle.ipuz -state ~/.xwplay -key sunday
//
// Guesses are saved after every change and restored on the next run.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bodul/crossword/ipuz"
	"github.com/bodul/crossword/puzzle"
	"github.com/bodul/crossword/storage"
)

func main() {
	var (
		cluesPath = flag.String("clues", "", "clues as JSON (across/down maps)")
		ipuzPath  = flag.String("ipuz", "", "IPUZ crossword file")
		stateDir  = flag.String("state", "", "directory for saved guesses (default: user cache dir)")
		key       = flag.String("key", "", "storage key (default: input file name)")
		nonSquare = flag.Bool("non-square", false, "size the grid to its content")
	)
	flag.Parse()

	if logPath := os.Getenv("XWPLAY_LOG"); logPath != "" {
		f, err := tea.LogToFile(logPath, "xwplay")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	input, title, err := readInput(*cluesPath, *ipuzPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xwplay:", err)
		flag.Usage()
		os.Exit(2)
	}

	dir, err := resolveStateDir(*stateDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xwplay:", err)
		os.Exit(1)
	}
	store, err := storage.NewFile(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xwplay:", err)
		os.Exit(1)
	}

	storageKey := *key
	if storageKey == "" {
		storageKey = strings.TrimSuffix(filepath.Base(*cluesPath+*ipuzPath), filepath.Ext(*cluesPath+*ipuzPath))
	}

	m, err := newModel(title, input, puzzle.Options{
		AllowNonSquare: *nonSquare,
		Storage:        store,
		StorageKey:     storageKey,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "xwplay:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "xwplay:", err)
		os.Exit(1)
	}
}

// readInput loads exactly one of the two input formats.
func readInput(cluesPath, ipuzPath string) (puzzle.CluesInput, string, error) {
	switch {
	case cluesPath != "" && ipuzPath != "":
		return nil, "", errors.New("use either -clues or -ipuz, not both")
	case cluesPath != "":
		data, err := os.ReadFile(cluesPath)
		if err != nil {
			return nil, "", err
		}
		var input puzzle.CluesInput
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, "", fmt.Errorf("%s: %w", cluesPath, err)
		}
		return input, filepath.Base(cluesPath), nil
	case ipuzPath != "":
		data, err := os.ReadFile(ipuzPath)
		if err != nil {
			return nil, "", err
		}
		doc, err := ipuz.Parse(data)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", ipuzPath, err)
		}
		input, ok := doc.Convert()
		if !ok {
			return nil, "", fmt.Errorf("%s: unsupported or empty IPUZ document", ipuzPath)
		}
		title := doc.Title
		if title == "" {
			title = filepath.Base(ipuzPath)
		}
		return input, title, nil
	default:
		return nil, "", errors.New("one of -clues or -ipuz is required")
	}
}

func resolveStateDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no state directory: %w", err)
	}
	return filepath.Join(cache, "xwplay"), nil
}
