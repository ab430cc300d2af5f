package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bodul/crossword/puzzle"
)

const analyzePrompt = `Analyse cette photo de grille de mots croisés résolue.

Extrais les définitions et leurs réponses au format JSON suivant :
{
  "title": "<titre de la grille, ou chaîne vide>",
  "across": {
    "1": {"clue": "Définition", "answer": "REPONSE", "row": 0, "col": 0},
    ...
  },
  "down": {
    "2": {"clue": "Définition", "answer": "REPONSE", "row": 0, "col": 2},
    ...
  }
}

Règles :
- "across" regroupe les définitions horizontales, "down" les verticales.
- La clé est le numéro imprimé dans la case de départ.
- "row" et "col" sont les coordonnées de la case de départ, à partir de 0, depuis le coin haut gauche.
- "answer" ne contient que des lettres, sans espace ni accent.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

// ImportedPuzzle is what a photo analysis yields.
type ImportedPuzzle struct {
	Title string            `json:"title"`
	Clues puzzle.CluesInput `json:"-"`
}

// geminiPuzzle mirrors the JSON requested by analyzePrompt.
type geminiPuzzle struct {
	Title  string                      `json:"title"`
	Across map[string]puzzle.ClueEntry `json:"across"`
	Down   map[string]puzzle.ClueEntry `json:"down"`
}

// AnalyzeImage sends a photo to Gemini and returns the clues it read.
func (g *GeminiClient) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (*ImportedPuzzle, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: analyzePrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	return parseImported(text)
}

// parseImported decodes and validates the model output.
func parseImported(text string) (*ImportedPuzzle, error) {
	var raw geminiPuzzle
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse clues JSON: %w\nraw response: %s", err, text)
	}
	if raw.Across == nil {
		raw.Across = map[string]puzzle.ClueEntry{}
	}
	if raw.Down == nil {
		raw.Down = map[string]puzzle.ClueEntry{}
	}
	if len(raw.Across)+len(raw.Down) == 0 {
		return nil, fmt.Errorf("no clues found in gemini response")
	}

	clues := puzzle.CluesInput{puzzle.Across: raw.Across, puzzle.Down: raw.Down}
	if err := clues.Validate(); err != nil {
		return nil, err
	}
	return &ImportedPuzzle{Title: strings.TrimSpace(raw.Title), Clues: clues}, nil
}
