package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bodul/crossword/ipuz"
	"github.com/bodul/crossword/puzzle"
)

const (
	maxUploadSize = 10 << 20 // 10 Mo
	maxIPUZSize   = 1 << 20
	maxActionSize = 16 << 10
	maxTitleLen   = 80
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	store    *Store
	gemini   *GeminiClient
	sse      *Broadcaster
	uploadRL *rateLimiter
	moveRL   *rateLimiter
	stop     context.CancelFunc
}

// NewServer creates a configured HTTP server. gemini may be nil, in which
// case photo import answers 503.
func NewServer(store *Store, gemini *GeminiClient) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		gemini:   gemini,
		sse:      NewBroadcaster(),
		uploadRL: newRateLimiter(5, time.Minute), // 5 uploads/min per IP
		moveRL:   newRateLimiter(60, time.Second), // 60 actions/sec per IP
		stop:     cancel,
	}
	go s.uploadRL.cleanup(ctx)
	go s.moveRL.cleanup(ctx)
	s.routes()
	return s
}

// Close stops background work.
func (s *Server) Close() {
	s.stop()
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("POST /api/puzzles/ipuz", s.handleImportIPUZ)
	s.mux.HandleFunc("POST /api/puzzles/image", s.handleImportImage)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)

	// Session API
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/{action}", s.handleAction)
	s.mux.HandleFunc("GET /api/sessions/{id}/events", s.handleSessionEvents)
	s.mux.HandleFunc("GET /api/sessions/{id}/ws", s.handleSessionSocket)

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// --- Puzzle handlers ---

// POST /api/puzzles: clues as JSON.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string            `json:"title"`
		Clues puzzle.CluesInput `json:"clues"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxIPUZSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	s.savePuzzle(w, req.Title, "json", req.Clues)
}

// POST /api/puzzles/ipuz: an IPUZ document as the body.
func (s *Server) handleImportIPUZ(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(clientKey(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxIPUZSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "Document trop volumineux (max 1 Mo)", http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := ipuz.Parse(data)
	if err != nil {
		jsonError(w, "Document IPUZ invalide", http.StatusBadRequest)
		return
	}
	clues, ok := doc.Convert()
	if !ok {
		jsonError(w, "Document IPUZ non pris en charge ou vide", http.StatusUnprocessableEntity)
		return
	}
	s.savePuzzle(w, doc.Title, "ipuz", clues)
}

// POST /api/puzzles/image: photo of a solved grid, read by Gemini.
func (s *Server) handleImportImage(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(clientKey(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	if s.gemini == nil {
		jsonError(w, "Analyse d'image non configurée", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image trop volumineuse (max 10 Mo)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "Champ 'image' requis", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "Format accepté : JPEG ou PNG", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Erreur de lecture de l'image", http.StatusInternalServerError)
		return
	}

	imported, err := s.gemini.AnalyzeImage(r.Context(), imageData, mimeType)
	if err != nil {
		log.Printf("Gemini analyze error: %v", err)
		jsonError(w, "Erreur lors de l'analyse de la grille", http.StatusInternalServerError)
		return
	}

	title := imported.Title
	if t := r.FormValue("title"); t != "" {
		title = t
	}
	s.savePuzzle(w, title, "image", imported.Clues)
}

func (s *Server) savePuzzle(w http.ResponseWriter, title, source string, clues puzzle.CluesInput) {
	p, err := s.store.AddPuzzle(sanitizeTitle(title), source, clues)
	switch {
	case errors.Is(err, puzzle.ErrConflictingAnswer):
		jsonError(w, "Réponses incompatibles : "+err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		jsonError(w, "Définitions invalides : "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.store.ListPuzzles())
}

// GET /api/puzzles/{id}: a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	p := s.store.GetPuzzle(r.PathValue("id"))
	if p == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// --- Session handlers ---

// POST /api/sessions: start playing a puzzle.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID   string `json:"puzzle_id"`
		StorageKey string `json:"storage_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "Champ 'puzzle_id' requis", http.StatusBadRequest)
		return
	}

	game, err := s.store.CreateGame(req.PuzzleID, strings.TrimSpace(req.StorageKey), s.sse.Publish)
	if err != nil {
		if s.store.GetPuzzle(req.PuzzleID) == nil {
			jsonError(w, "Grille introuvable", http.StatusNotFound)
			return
		}
		log.Printf("create session on %s: %v", req.PuzzleID, err)
		jsonError(w, "Impossible de démarrer la partie", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(game.State())
}

// GET /api/sessions/{id}: current state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(game.State())
}

// actionResponse answers every session action.
type actionResponse struct {
	Handled bool         `json:"handled"`
	State   SessionState `json:"state"`
}

// POST /api/sessions/{id}/{action}: key, input, click, input-click, clue,
// guess, reset, fill, focus or blur.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if !s.moveRL.allow(clientKey(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var a Action
	r.Body = http.MaxBytesReader(w, r.Body, maxActionSize)
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	a.Type = r.PathValue("action")

	handled, err := game.Apply(a)
	if err != nil {
		code, msg := actionError(err)
		jsonError(w, msg, code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(actionResponse{Handled: handled, State: game.State()})
}

// actionError maps an Apply error to a status and a message.
func actionError(err error) (int, string) {
	switch {
	case errors.Is(err, errUnknownAction):
		return http.StatusNotFound, "Action inconnue"
	case errors.Is(err, puzzle.ErrUnusedCell):
		return http.StatusBadRequest, "Case hors grille"
	case errors.Is(err, puzzle.ErrInvalidGuess), errors.Is(err, errBadAction):
		return http.StatusBadRequest, "Valeur invalide : " + err.Error()
	default:
		return http.StatusInternalServerError, "Erreur interne"
	}
}

// GET /api/sessions/{id}/events: SSE stream of notifications.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	s.sse.ServeSSE(w, r, game.ID, func(c *client) {
		c.send(stateEvent(game))
	})
}

// stateEvent is the first message of every stream.
func stateEvent(game *GameSession) string {
	evt, _ := json.Marshal(map[string]any{
		"type":  "session_state",
		"state": game.State(),
	})
	return string(evt)
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"puzzles":  len(s.store.ListPuzzles()),
		"sessions": len(s.store.ListGames()),
	})
}

// --- Helpers ---

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// clientKey identifies the caller for rate limiting.
func clientKey(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}

func sanitizeTitle(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxTitleLen {
		s = string([]rune(s)[:maxTitleLen])
	}
	return s
}
