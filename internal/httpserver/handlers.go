package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/rps-frame/internal/frame"
	"github.com/robalobadob/rps-frame/internal/game"
	"github.com/robalobadob/rps-frame/internal/store"
)

const frameTitle = "Rock Paper Scissors"

// Seed ranges. A session's first seed comes from a small range; every reset
// and every resolved round draws from the wider ones.
const (
	initialSeedMax = 10
	resetSeedMax   = 1000
	roundSeedMax   = 100
)

// Image screens.
const (
	screenWelcome = "welcome"
	screenPlay    = "play"
)

// ------------------------------ START --------------------------------------

// handleStart resets the session and renders the welcome screen with the
// three move buttons. A valid prior token keeps its session ID.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, err := frame.ParseRequest(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "bad frame request", err)
		return
	}

	seed, err := s.rng.Intn(0, resetSeedMax)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "random source failed", err)
		return
	}
	reset := func(game.State) (game.State, error) { return game.ResetSession(seed), nil }

	sess, token, err := s.transition(r.Context(), req.UntrustedData.State, reset, func() (game.State, error) {
		return reset(game.State{})
	})
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "save session", err)
		return
	}
	hlog.FromRequest(r).Debug().Str("session", sess.ID).Msg("session reset")

	s.writeFrame(w, r, frame.Frame{
		Title:   frameTitle,
		Image:   s.imageURL(screenWelcome, req.Status, nil),
		PostURL: s.baseURL + "/play",
		State:   token,
		Buttons: s.buttons(game.MoveIntents()),
	})
}

// ------------------------------- PLAY --------------------------------------

// handlePlay applies the submitted move to the session and renders the
// scoreboard. Without a player identity the state is re-rendered unchanged.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	req, err := frame.ParseRequest(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "bad frame request", err)
		return
	}

	in := game.RoundInput{Identified: req.Identified(), Move: submittedMove(r, req)}
	var draw int
	if in.Identified {
		if draw, err = s.rng.Intn(0, roundSeedMax); err != nil {
			s.fail(w, r, http.StatusInternalServerError, "random source failed", err)
			return
		}
	}
	round := func(prev game.State) (game.State, error) { return game.ApplyRound(prev, in, draw), nil }

	sess, token, err := s.transition(r.Context(), req.UntrustedData.State, round, func() (game.State, error) {
		seed, err := s.rng.Intn(0, initialSeedMax)
		if err != nil {
			return game.State{}, err
		}
		return round(game.Initial(seed))
	})
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "play round", err)
		return
	}
	st := sess.State
	hlog.FromRequest(r).Debug().
		Str("session", sess.ID).
		Int64("fid", req.UntrustedData.FID).
		Str("user", string(st.UserMove)).
		Str("ai", string(st.AIMove)).
		Str("outcome", string(st.Outcome)).
		Int("score", st.Score).
		Msg("round")

	s.writeFrame(w, r, frame.Frame{
		Title:   frameTitle,
		Image:   s.imageURL(screenPlay, req.Status, &st),
		PostURL: s.baseURL + "/play",
		State:   token,
		Buttons: s.buttons(game.BuildIntents(st.Outcome)),
	})
}

// submittedMove returns the raw move of a play action: the "value" query
// parameter set on each button target, else the pressed button's position in
// the move row. Empty means absent.
func submittedMove(r *http.Request, req *frame.Request) string {
	if v := r.URL.Query().Get("value"); v != "" {
		return v
	}
	if i := req.UntrustedData.ButtonIndex; i >= 1 && i <= len(game.Moves) {
		return string(game.Moves[i-1])
	}
	return ""
}

// transition advances the session behind token with fn. When the token
// references no session a new one is started from fresh().
func (s *Server) transition(ctx context.Context, token string, fn store.TransitionFunc, fresh func() (game.State, error)) (*store.Session, string, error) {
	sess, next, err := s.store.Update(ctx, token, fn)
	if err == nil {
		return sess, next, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}
	if token != "" {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding unusable state token")
	}
	st, err := fresh()
	if err != nil {
		return nil, "", err
	}
	sess = &store.Session{State: st}
	next, err = s.store.Save(ctx, sess)
	if err != nil {
		return nil, "", err
	}
	return sess, next, nil
}

// ------------------------------- IMAGE -------------------------------------

// handleImage renders the SVG card for the query built by imageURL. The card
// depends only on the URL so it is safe to cache forever.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	card := frame.Card{
		Text:     "Welcome",
		Gradient: q.Get("status") == frame.StatusResponse,
	}
	if q.Get("screen") == screenPlay {
		score, err := strconv.Atoi(q.Get("score"))
		if err != nil || score < 0 {
			score = 0
		}
		card.Text = game.Scoreboard(q.Get("user"), q.Get("ai"), score)
	}

	var buf bytes.Buffer
	if err := s.render.Card(&buf, card); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "render image", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(buf.Bytes())
}

// imageURL points at handleImage for the given screen. st is nil on the
// welcome screen.
func (s *Server) imageURL(screen, status string, st *game.State) string {
	q := url.Values{}
	q.Set("screen", screen)
	q.Set("status", status)
	if st != nil {
		q.Set("user", string(st.UserMove))
		q.Set("ai", string(st.AIMove))
		q.Set("score", strconv.Itoa(st.Score))
	}
	return s.baseURL + "/image?" + q.Encode()
}

// ------------------------------ helpers ------------------------------------

// buttons maps intents onto frame buttons.
func (s *Server) buttons(intents []game.Intent) []frame.Button {
	out := make([]frame.Button, 0, len(intents))
	for _, in := range intents {
		target := s.baseURL + "/"
		if in.Kind == game.IntentPlay {
			target = s.baseURL + "/play?value=" + url.QueryEscape(string(in.Value))
		}
		out = append(out, frame.Button{Label: in.Label, Target: target})
	}
	return out
}

// writeFrame renders f into a buffer first so a template failure still
// yields a clean 500.
func (s *Server) writeFrame(w http.ResponseWriter, r *http.Request, f frame.Frame) {
	var buf bytes.Buffer
	if err := s.render.Frame(&buf, f); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "render frame", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// fail logs err and writes a plain error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	var ev *zerolog.Event
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	} else {
		ev = hlog.FromRequest(r).Warn()
	}
	ev.Err(err).Int("status", status).Msg(msg)
	http.Error(w, msg, status)
}
