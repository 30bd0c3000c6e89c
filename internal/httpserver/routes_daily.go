// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily word mode.
// Exposes four endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's daily round
//   - POST /daily/guess       → submit a letter for today's daily round
//   - POST /daily/hint        → spend lives to reveal a letter
//   - GET  /daily/leaderboard → fetch top results for today (or a given date)
//
// Each user can finish the daily word once per day (enforced by DB +
// in-memory session). Rounds are held in the shared store for active play
// and their result is persisted when they end. Deterministic word
// selection is based on date + salt over the pooled bank.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/seanl/neo-hangman/internal/daily"
	"github.com/seanl/neo-hangman/internal/game"
	"github.com/seanl/neo-hangman/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession links one user's in-progress daily round to its result row.
type dailySession struct {
	RoundID   string
	UserID    string
	Date      string
	WordIndex int
	Start     time.Time
	Finished  bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Post("/hint", dd.handleHint)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// wordForNow returns today's date key, deterministic word index, and secret.
// The pool is the whole bank in sorted-category order, so the index is
// stable across processes.
func (d *dailyServer) wordForNow() (date string, idx int, secret string) {
	now := time.Now().UTC()
	date = daily.DateKey(now)
	pool, err := d.srv.bank.Words(words.CategoryAny)
	if err != nil || len(pool) == 0 {
		return date, 0, ""
	}
	idx = daily.WordIndex(now, d.salt, len(pool))
	return date, idx, pool[idx]
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return d.srv.ensureAnonID(w, r), false
}

// handleNew starts today's daily round, or resumes the active one.
// A user who already finished today gets 409 already_played.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid, _ := d.userIDWithAnon(w, r)
	date, idx, secret := d.wordForNow()
	if secret == "" {
		http.Error(w, `{"error":"empty_word_bank"}`, http.StatusInternalServerError)
		return
	}

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already-played check")
	}
	if played {
		http.Error(w, `{"error":"already_played"}`, http.StatusConflict)
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	sess := d.sessions[key]
	d.mu.Unlock()

	if sess != nil && !sess.Finished {
		if rd, err := d.srv.store.Get(r.Context(), sess.RoundID); err == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "round": rd.Snapshot()})
			return
		}
	}

	rd, err := game.NewRound(secret, game.Options{
		MaxLives: d.srv.maxLives,
		HintCost: d.srv.hintCost,
	})
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := d.srv.store.Save(r.Context(), rd); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	d.mu.Lock()
	d.sessions[key] = &dailySession{
		RoundID:   rd.ID,
		UserID:    uid,
		Date:      date,
		WordIndex: idx,
		Start:     time.Now(),
	}
	d.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "round": rd.Snapshot()})
}

// activeSession resolves the caller's session and round for today.
func (d *dailyServer) activeSession(w http.ResponseWriter, r *http.Request) (*dailySession, *game.Round, bool) {
	uid, _ := d.userIDWithAnon(w, r)
	date := daily.DateKey(time.Now())

	d.mu.Lock()
	sess := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if sess == nil {
		http.Error(w, `{"error":"no_active_daily"}`, http.StatusNotFound)
		return nil, nil, false
	}
	rd, err := d.srv.store.Get(r.Context(), sess.RoundID)
	if err != nil {
		http.Error(w, `{"error":"no_active_daily"}`, http.StatusNotFound)
		return nil, nil, false
	}
	return sess, rd, true
}

// finishIfDone persists the round result once it turns terminal.
func (d *dailyServer) finishIfDone(r *http.Request, sess *dailySession, rd *game.Round) {
	if !rd.Finished() || sess.Finished {
		return
	}
	sess.Finished = true
	err := d.store.InsertResult(r.Context(), daily.Result{
		UserID:       sess.UserID,
		Date:         sess.Date,
		WordIndex:    sess.WordIndex,
		Won:          rd.Won(),
		WrongGuesses: rd.WrongGuesses(),
		HintsUsed:    rd.HintsUsed,
		ElapsedMs:    int(time.Since(sess.Start).Milliseconds()),
	})
	if err != nil {
		log.Warn().Err(err).Str("user", sess.UserID).Msg("insert daily result")
	}
}

// handleGuess applies a letter to the caller's daily round.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, rd, ok := d.activeSession(w, r)
	if !ok {
		return
	}
	res, err := rd.Guess(req.Letter)
	if err != nil {
		code, kind := errStatus(err)
		http.Error(w, `{"error":"`+kind+`"}`, code)
		return
	}
	_ = d.srv.store.Save(r.Context(), rd)
	d.finishIfDone(r, sess, rd)
	_ = json.NewEncoder(w).Encode(guessRes{Outcome: res.Outcome, Letter: res.Letter, Round: rd.Snapshot()})
}

// handleHint reveals a letter in the caller's daily round.
func (d *dailyServer) handleHint(w http.ResponseWriter, r *http.Request) {
	sess, rd, ok := d.activeSession(w, r)
	if !ok {
		return
	}
	rev, err := rd.UseHint()
	if err != nil {
		code, kind := errStatus(err)
		http.Error(w, `{"error":"`+kind+`"}`, code)
		return
	}
	_ = d.srv.store.Save(r.Context(), rd)
	d.finishIfDone(r, sess, rd)
	_ = json.NewEncoder(w).Encode(hintRes{Letter: rev.Letter, Round: rd.Snapshot()})
}

// handleLeaderboard lists top winners for ?date= (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "results": rows})
}
