package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bodul/crossword/puzzle"
)

// Screen layout: title, blank line, then one line per grid row with cells
// cellWidth columns wide.
const (
	boardTop  = 2
	cellWidth = 3
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	blockStyle    = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	cellStyle     = lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("232"))
	answerStyle   = cellStyle.Background(lipgloss.Color("153"))
	selectedStyle = cellStyle.Background(lipgloss.Color("220")).Bold(true)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	clueStyle     = lipgloss.NewStyle().Italic(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// model drives a Crossword from terminal events.
type model struct {
	title  string
	cw     *puzzle.Crossword
	status string
}

func newModel(title string, input puzzle.CluesInput, opts puzzle.Options) (*model, error) {
	m := &model{title: title}
	opts.Callbacks = puzzle.Callbacks{
		AnswerCorrect: func(dir puzzle.Direction, number, _ string) {
			m.status = fmt.Sprintf("%s %s is correct", number, dir)
		},
		AnswerIncorrect: func(dir puzzle.Direction, number, _ string) {
			m.status = fmt.Sprintf("%s %s is not right yet", number, dir)
		},
		LoadedCorrect: func(answers []puzzle.SolvedAnswer) {
			m.status = fmt.Sprintf("%d answers already solved", len(answers))
		},
		CrosswordCorrect: func(correct bool) {
			if correct {
				m.status = "Solved!"
			}
		},
		// Complete fires before Correct, so a solved grid ends on "Solved!".
		CrosswordComplete: func(complete bool) {
			if complete {
				m.status = "Every cell is filled, but something is wrong"
			}
		},
	}

	cw, err := puzzle.New(input, opts)
	if err != nil {
		return nil, err
	}
	// The terminal already has our input; focus needs no extra work.
	cw.RegisterFocusHandler(func() {})
	cw.Focus()
	m.cw = cw
	return m, nil
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if row, col, ok := cellAt(msg.X, msg.Y); ok {
				m.cw.HandleCellClick(row, col)
			}
		}
	case tea.FocusMsg:
		m.cw.Focus()
	case tea.BlurMsg:
		m.cw.Blur()
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyCtrlR:
		m.cw.Reset()
		m.status = "Grid cleared"
		return nil
	case tea.KeyCtrlF:
		m.cw.FillAllAnswers()
		return nil
	case tea.KeyRunes:
		if msg.Paste {
			m.cw.HandleText(string(msg.Runes))
			return nil
		}
	}

	name, ok := keyName(msg)
	if !ok {
		return nil
	}
	var mods puzzle.Modifiers
	if msg.Alt {
		mods |= puzzle.ModAlt
	}
	m.cw.HandleKey(name, mods)
	return nil
}

// keyName translates a terminal key into the names HandleKey understands.
func keyName(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return puzzle.KeyArrowUp, true
	case tea.KeyDown:
		return puzzle.KeyArrowDown, true
	case tea.KeyLeft:
		return puzzle.KeyArrowLeft, true
	case tea.KeyRight:
		return puzzle.KeyArrowRight, true
	case tea.KeySpace:
		return puzzle.KeySpace, true
	case tea.KeyTab:
		return puzzle.KeyTab, true
	case tea.KeyBackspace:
		return puzzle.KeyBackspace, true
	case tea.KeyDelete:
		return puzzle.KeyDelete, true
	case tea.KeyHome:
		return puzzle.KeyHome, true
	case tea.KeyEnd:
		return puzzle.KeyEnd, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return string(msg.Runes), true
		}
	}
	return "", false
}

// cellAt maps a mouse position to a grid cell.
func cellAt(x, y int) (row, col int, ok bool) {
	row, col = y-boardTop, x/cellWidth
	return row, col, row >= 0 && x >= 0
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n\n")

	if clue, ok := m.cw.CurrentClue(); ok {
		text := fmt.Sprintf("%s %s: %s", clue.Number, m.cw.Selection().Direction, clue.Clue)
		if clue.Correct {
			text = correctStyle.Render(text + " ✓")
		} else {
			text = clueStyle.Render(text)
		}
		b.WriteString(text)
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("arrows move · space/tab turn · ctrl+r reset · ctrl+f reveal · esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *model) renderGrid() string {
	grid := m.cw.Grid()
	sel := m.cw.Selection()
	inAnswer := m.currentAnswerCells()

	lines := make([]string, 0, grid.Rows())
	for r := range grid.Rows() {
		var line strings.Builder
		for c := range grid.Cols() {
			cell, ok := grid.Cell(r, c).(*puzzle.UsedCell)
			if !ok {
				line.WriteString(blockStyle.Render(strings.Repeat(" ", cellWidth)))
				continue
			}
			letter := cell.Guess
			if letter == "" {
				letter = " "
			}
			text := " " + letter + " "
			switch {
			case m.cw.Focused() && r == sel.Row && c == sel.Col:
				line.WriteString(selectedStyle.Render(text))
			case inAnswer[[2]int{r, c}]:
				line.WriteString(answerStyle.Render(text))
			default:
				line.WriteString(cellStyle.Render(text))
			}
		}
		lines = append(lines, line.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// currentAnswerCells returns the cells of the selected answer.
func (m *model) currentAnswerCells() map[[2]int]bool {
	clue, ok := m.cw.CurrentClue()
	if !ok {
		return nil
	}
	dRow, dCol := 0, 1
	if m.cw.Selection().Direction == puzzle.Down {
		dRow, dCol = 1, 0
	}
	cells := make(map[[2]int]bool)
	i := 0
	for range clue.Answer {
		cells[[2]int{clue.Row + i*dRow, clue.Col + i*dCol}] = true
		i++
	}
	return cells
}
