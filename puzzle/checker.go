package puzzle

// evaluate walks one answer. An answer is complete when every cell has a
// guess and correct when it is complete and every guess matches.
func (cw *Crossword) evaluate(dir Direction, info *ClueState) (complete, correct bool) {
	dRow, dCol := dir.delta()
	correct = true
	i := 0
	for _, r := range info.Answer {
		cell := cw.grid.used(info.Row+i*dRow, info.Col+i*dCol)
		if cell == nil || cell.Guess == "" {
			return false, false
		}
		if cell.Guess != string(r) {
			correct = false
		}
		i++
	}
	return true, correct
}

// checkCell re-evaluates the answers through (row, col) after its guess
// changed, then the whole puzzle.
func (cw *Crossword) checkCell(row, col int) {
	cell := cw.grid.used(row, col)
	if cell == nil {
		return
	}
	for _, dir := range Directions {
		if number := cell.Label(dir); number != "" {
			cw.checkAnswer(dir, number)
		}
	}
	cw.updateCompletion()
}

func (cw *Crossword) checkAnswer(dir Direction, number string) {
	info := cw.clues.find(dir, number)
	if info == nil {
		return
	}
	complete, correct := cw.evaluate(dir, info)
	info.Complete, info.Correct = complete, correct
	if !complete {
		return
	}

	cb := cw.opts.Callbacks
	if cb.AnswerComplete != nil {
		cb.AnswerComplete(dir, number, correct, info.Answer)
	}
	if correct {
		if cb.AnswerCorrect != nil {
			cb.AnswerCorrect(dir, number, info.Answer)
		}
	} else if cb.AnswerIncorrect != nil {
		cb.AnswerIncorrect(dir, number, info.Answer)
	}
}

// checkAllAnswers evaluates every answer from its start cell, as done after
// restoring saved guesses. It returns the answers already solved instead of
// notifying them one by one.
func (cw *Crossword) checkAllAnswers() []SolvedAnswer {
	var solved []SolvedAnswer
	for _, dir := range Directions {
		list := cw.clues.List(dir)
		for i := range list {
			complete, correct := cw.evaluate(dir, &list[i])
			list[i].Complete, list[i].Correct = complete, correct
			if correct {
				solved = append(solved, SolvedAnswer{Direction: dir, Number: list[i].Number, Answer: list[i].Answer})
			}
		}
	}
	return solved
}

// updateCompletion recomputes the whole-puzzle flags and notifies only the
// ones that changed. A puzzle without clues is never complete.
func (cw *Crossword) updateCompletion() {
	complete, correct := true, true
	total := 0
	for _, dir := range Directions {
		for _, c := range cw.clues.List(dir) {
			total++
			complete = complete && c.Complete
			correct = correct && c.Correct
		}
	}
	if total == 0 {
		complete, correct = false, false
	}

	if complete != cw.complete {
		cw.complete = complete
		if cw.opts.Callbacks.CrosswordComplete != nil {
			cw.opts.Callbacks.CrosswordComplete(complete)
		}
	}
	if correct != cw.correct {
		cw.correct = correct
		if cw.opts.Callbacks.CrosswordCorrect != nil {
			cw.opts.Callbacks.CrosswordCorrect(correct)
		}
	}
}
