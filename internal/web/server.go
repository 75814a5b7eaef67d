package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/log"
	"github.com/zuckel/ImperialCommander2/internal/session"
)

// streamBuffer is the per-connection event backlog. A client that falls
// further behind misses events.
const streamBuffer = 64

// Server is the commander web API server.
type Server struct {
	sess   *session.Session
	logger zerolog.Logger
	mux    *http.ServeMux
}

// NewServer creates a web server driving sess.
func NewServer(sess *session.Session, logger zerolog.Logger) *Server {
	s := &Server{
		sess:   sess,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/hand", s.handleBuildHand)
	s.mux.HandleFunc("POST /api/deploy/fuzzy", s.handleDeployFuzzy)
	s.mux.HandleFunc("POST /api/deploy/{id}", s.handleDeploy)
	s.mux.HandleFunc("POST /api/reinforce/pick", s.handleReinforcePick)
	s.mux.HandleFunc("POST /api/reinforce/{id}", s.handleReinforce)
	s.mux.HandleFunc("POST /api/defeat/{id}", s.handleDefeat)
	s.mux.HandleFunc("POST /api/groups/{id}/size", s.handleGroupSize)
	s.mux.HandleFunc("POST /api/groups/{id}/exhaust", s.handleExhaust)
	s.mux.HandleFunc("POST /api/groups/{id}/activate", s.handleActivate)
	s.mux.HandleFunc("POST /api/groups/{id}/color", s.handleCycleColor)
	s.mux.HandleFunc("GET /api/groups/{id}/counterpart", s.handleCounterpart)
	s.mux.HandleFunc("POST /api/heroes/{id}", s.handleDeployHero)
	s.mux.HandleFunc("DELETE /api/heroes/{id}", s.handleRemoveHero)
	s.mux.HandleFunc("POST /api/threat", s.handleThreat)
	s.mux.HandleFunc("POST /api/round/end", s.handleEndRound)
	s.mux.HandleFunc("POST /api/save", s.handleSave)
	s.mux.HandleFunc("POST /api/load/{id}", s.handleLoad)

	// Live deployment events
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.mux)
}

type handRequest struct {
	ThreatLevel    int      `json:"threat_level"`
	EarnedVillains []string `json:"earned_villains"`
}

type onslaughtRequest struct {
	Onslaught bool `json:"onslaught"`
}

type threatRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type sizeRequest struct {
	Size int `json:"size"`
}

type exhaustRequest struct {
	Exhausted bool `json:"exhausted"`
}

type groupResponse struct {
	Group   *session.GroupView `json:"group,omitempty"`
	Message string             `json:"message,omitempty"`
	State   session.StateView  `json:"state"`
}

type defeatResponse struct {
	Defeat deploy.DefeatResult `json:"defeat"`
	State  session.StateView   `json:"state"`
}

// eventMessage is one frame on the /ws stream.
type eventMessage struct {
	Type  string             `json:"type"` // "state" or "event"
	State *session.StateView `json:"state,omitempty"`
	Event *log.GameEvent     `json:"event,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, deploy.ErrNotFound), errors.Is(err, session.ErrUnknownSession):
		status = http.StatusNotFound
	case errors.Is(err, deploy.ErrAlreadyDeployed):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoStore):
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody reads an optional JSON body into v. An empty body keeps v's
// zero value.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.State())
}

func (s *Server) handleBuildHand(w http.ResponseWriter, r *http.Request) {
	var req handRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ThreatLevel < 1 {
		writeError(w, errors.New("threat_level must be >= 1"))
		return
	}
	st, err := s.sess.BuildHand(req.EarnedVillains, req.ThreatLevel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeployFuzzy(w http.ResponseWriter, r *http.Request) {
	var req onslaughtRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gv, ok, err := s.sess.DeployFuzzy(req.Onslaught)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := groupResponse{State: s.sess.State()}
	if ok {
		resp.Group = &gv
	} else {
		resp.Message = "no affordable group in the deployment hand"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req onslaughtRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gv, err := s.sess.Deploy(r.PathValue("id"), req.Onslaught)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupResponse{Group: &gv, State: s.sess.State()})
}

func (s *Server) handleReinforcePick(w http.ResponseWriter, r *http.Request) {
	var req onslaughtRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gv, ok, err := s.sess.ReinforceRandom(req.Onslaught)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := groupResponse{State: s.sess.State()}
	if ok {
		resp.Group = &gv
	} else {
		resp.Message = "no deployed group can be reinforced"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReinforce(w http.ResponseWriter, r *http.Request) {
	var req onslaughtRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	applied, err := s.sess.Reinforce(id, req.Onslaught)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := groupResponse{State: s.sess.State()}
	if !applied {
		resp.Message = id + " cannot be reinforced"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDefeat(w http.ResponseWriter, r *http.Request) {
	res, err := s.sess.Defeat(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, defeatResponse{Defeat: res, State: s.sess.State()})
}

// writeGroup answers the routes that change one group on the board.
func (s *Server) writeGroup(w http.ResponseWriter, gv session.GroupView, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupResponse{Group: &gv, State: s.sess.State()})
}

func (s *Server) handleGroupSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gv, err := s.sess.SetGroupSize(r.PathValue("id"), req.Size)
	s.writeGroup(w, gv, err)
}

func (s *Server) handleExhaust(w http.ResponseWriter, r *http.Request) {
	req := exhaustRequest{Exhausted: true}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gv, err := s.sess.ToggleExhausted(r.PathValue("id"), req.Exhausted)
	s.writeGroup(w, gv, err)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req deploy.Activation
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gv, err := s.sess.MarkActivated(r.PathValue("id"), req)
	s.writeGroup(w, gv, err)
}

func (s *Server) handleCycleColor(w http.ResponseWriter, r *http.Request) {
	gv, err := s.sess.CycleColor(r.PathValue("id"))
	s.writeGroup(w, gv, err)
}

func (s *Server) handleCounterpart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	gv, ok, err := s.sess.Counterpart(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, groupResponse{Message: "no available counterpart for " + id, State: s.sess.State()})
		return
	}
	writeJSON(w, http.StatusOK, groupResponse{Group: &gv, State: s.sess.State()})
}

func (s *Server) handleDeployHero(w http.ResponseWriter, r *http.Request) {
	gv, err := s.sess.DeployHero(r.PathValue("id"))
	s.writeGroup(w, gv, err)
}

func (s *Server) handleRemoveHero(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.RemoveHero(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.State())
}

func (s *Server) handleThreat(w http.ResponseWriter, r *http.Request) {
	var req threatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Reason == "" {
		req.Reason = "manual"
	}
	writeJSON(w, http.StatusOK, s.sess.ModifyThreat(req.Delta, req.Reason))
}

func (s *Server) handleEndRound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.EndRound())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Save(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": s.sess.ID()})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Load(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.State())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer wsConn.CloseNow()

	logger := s.logger.With().Str("conn", uuid.NewString()).Logger()
	logger.Debug().Msg("stream opened")

	// Subscribe before the state frame so no event falls between the two.
	events, cancel := s.sess.Events().Subscribe(streamBuffer)
	defer cancel()

	// The client never sends; CloseRead cancels ctx once it goes away.
	ctx := wsConn.CloseRead(r.Context())

	st := s.sess.State()
	if err := wsjson.Write(ctx, wsConn, eventMessage{Type: "state", State: &st}); err != nil {
		logger.Debug().Err(err).Msg("write state")
		return
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("stream closed")
			return
		case ev, ok := <-events:
			if !ok {
				wsConn.Close(websocket.StatusNormalClosure, "session ended")
				return
			}
			if err := wsjson.Write(ctx, wsConn, eventMessage{Type: "event", Event: &ev}); err != nil {
				logger.Debug().Err(err).Msg("write event")
				return
			}
		}
	}
}
