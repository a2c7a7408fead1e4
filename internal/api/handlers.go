package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/session"
)

const maxBodyBytes = 4 << 10

// routerHandlers holds the handler dependencies. The hub may be nil in
// router-only tests, which disables the websocket route.
type routerHandlers struct {
	sessions Sessions
	renderer FrameRenderer
	tokens   *TokenIssuer
	hub      *WebSocketHub
	top      int
	log      *zap.Logger
}

type createSessionRequest struct {
	PlayerID string `json:"playerId"`
	Seed     int64  `json:"seed"`
}

type createSessionResponse struct {
	Session   session.Info `json:"session"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Seed      int64        `json:"seed"`
}

type selectCharacterRequest struct {
	Character string `json:"character"`
}

type characterView struct {
	Key              string  `json:"key"`
	Name             string  `json:"name"`
	Price            int     `json:"price"`
	ScoreMultiplier  float64 `json:"scoreMultiplier"`
	RewardMultiplier float64 `json:"rewardMultiplier"`
	SpeedScale       float64 `json:"speedScale"`
	Unlocked         *bool   `json:"unlocked,omitempty"`
}

func newCharacterView(c game.Character) characterView {
	return characterView{
		Key:              c.Key,
		Name:             c.Name,
		Price:            c.Price,
		ScoreMultiplier:  c.ScoreMultiplier,
		RewardMultiplier: c.RewardMultiplier,
		SpeedScale:       c.SpeedScale,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps session errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionLimit):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrInvalidPlayer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *routerHandlers) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
		writeError(w, "internal error", code)
		return
	}
	writeError(w, err.Error(), code)
}

func (h *routerHandlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return sess, true
}

func (h *routerHandlers) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.PlayerID) > 64 {
		writeError(w, session.ErrInvalidPlayer.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.PlayerID, req.Seed)
	if err != nil {
		h.fail(w, err)
		return
	}
	token, exp, err := h.tokens.Issue(sess.PlayerID, sess.ID)
	if err != nil {
		h.sessions.Close(sess.ID, "token_error")
		h.fail(w, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSONStatus(w, http.StatusCreated, createSessionResponse{
		Session:   sess.Info(),
		Token:     token,
		ExpiresAt: exp,
		Seed:      sess.Seed(),
	})
}

func (h *routerHandlers) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"sessions": h.sessions.List(),
	})
}

func (h *routerHandlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, sess.Info())
}

func (h *routerHandlers) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(id, "client"); err != nil {
		h.fail(w, err)
		return
	}
	if h.hub != nil {
		h.hub.CloseSession(id, "client")
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendCommand queues cmd and answers 202; the effect is visible in the
// next snapshot.
func (h *routerHandlers) sendCommand(w http.ResponseWriter, r *http.Request, cmd game.Command) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Send(cmd); err != nil {
		h.fail(w, err)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]string{"queued": cmd.Kind.String()})
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var in game.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "invalid input", http.StatusBadRequest)
		return
	}
	h.sendCommand(w, r, game.Command{Kind: game.CmdInput, Input: in})
}

func (h *routerHandlers) handlePause(w http.ResponseWriter, r *http.Request) {
	h.sendCommand(w, r, game.Command{Kind: game.CmdPause})
}

func (h *routerHandlers) handleResume(w http.ResponseWriter, r *http.Request) {
	h.sendCommand(w, r, game.Command{Kind: game.CmdResume})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	h.sendCommand(w, r, game.Command{Kind: game.CmdRestart})
}

func (h *routerHandlers) handleSelectCharacter(w http.ResponseWriter, r *http.Request) {
	var req selectCharacterRequest
	if err := decodeJSON(r, &req); err != nil || req.Character == "" {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var found *game.Character
	for _, c := range h.sessions.Characters() {
		if c.Key == req.Character {
			found = &c
			break
		}
	}
	if found == nil {
		writeError(w, "unknown character", http.StatusBadRequest)
		return
	}
	if !found.Unlocked(sess.Profile()) {
		writeError(w, "character locked", http.StatusForbidden)
		return
	}
	h.sendCommand(w, r, game.Command{Kind: game.CmdSelectCharacter, Character: found.Key})
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, ok := sess.Snapshot()
	if !ok {
		writeError(w, "no state yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, sess.Profile())
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "rendering disabled", http.StatusNotImplemented)
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, ok := sess.Snapshot()
	if !ok {
		writeError(w, "no state yet", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderPNG(&buf, snap); err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.hub.HandleWebSocket(w, r, sess)
}

func (h *routerHandlers) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.top
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}
	writeJSON(w, map[string]interface{}{
		"entries": h.sessions.Top(limit),
	})
}

func (h *routerHandlers) handlePlayerRank(w http.ResponseWriter, r *http.Request) {
	entries := h.sessions.Around(chi.URLParam(r, "player"), 2, 2)
	if len(entries) == 0 {
		writeError(w, "player not ranked", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{
		"entries": entries,
	})
}

func (h *routerHandlers) handleCharacters(w http.ResponseWriter, r *http.Request) {
	chars := h.sessions.Characters()
	out := make([]characterView, 0, len(chars))
	for _, c := range chars {
		out = append(out, newCharacterView(c))
	}
	writeJSON(w, map[string]interface{}{
		"characters": out,
	})
}

func (h *routerHandlers) handleSessionCharacters(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	profile := sess.Profile()
	chars := h.sessions.Characters()
	out := make([]characterView, 0, len(chars))
	for _, c := range chars {
		v := newCharacterView(c)
		unlocked := c.Unlocked(profile)
		v.Unlocked = &unlocked
		out = append(out, v)
	}
	writeJSON(w, map[string]interface{}{
		"characters": out,
	})
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"sessions": len(h.sessions.List()),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSONStatus(w, code, map[string]string{"error": message})
}
