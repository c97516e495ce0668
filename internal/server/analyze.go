package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/boardio"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/pathcost"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

const (
	maxBodyBytes     = 1 << 20
	defaultBudget    = time.Second
	maxAnalyzeBudget = 10 * time.Second
)

// pathResponse reports Cost -1 when the opponent blocks every route.
type pathResponse struct {
	Color     board.Color   `json:"color"`
	Reachable bool          `json:"reachable"`
	Cost      int           `json:"cost"`
	Path      []board.Coord `json:"path"`
	Missing   []board.Coord `json:"missing"`
	Start     *board.Coord  `json:"start,omitempty"`
	Goal      *board.Coord  `json:"goal,omitempty"`
}

type moveRequest struct {
	Document boardio.Document `json:"document"`
	Color    board.Color      `json:"color"`
	Preset   string           `json:"preset"`
	BudgetMS int              `json:"budget_ms"`
	MaxDepth int              `json:"max_depth"`
}

type moveResponse struct {
	Action   board.Action  `json:"action"`
	Score    float64       `json:"score"`
	Source   search.Source `json:"source"`
	Stats    search.Stats  `json:"stats"`
	Features eval.Features `json:"features"`
	Static   float64       `json:"static_score"`
}

func colorParam(r *http.Request, fallback board.Color) (board.Color, error) {
	raw := r.URL.Query().Get("color")
	if raw == "" {
		return fallback, nil
	}
	return board.ParseColor(raw)
}

func (s *Server) handleAnalyzePath(w http.ResponseWriter, r *http.Request) {
	color, err := colorParam(r, board.Blue)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := boardio.Parse(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := doc.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var res pathcost.Result
	resp := pathResponse{Color: color}
	if doc.PointToPoint() {
		start, goal := doc.Start.Coord(), doc.Goal.Coord()
		res = pathcost.Between(b, color, start, goal)
		resp.Start, resp.Goal = &start, &goal
	} else {
		res = pathcost.ShortestPath(b, color)
	}
	resp.Reachable = res.Reachable()
	resp.Cost = -1
	if resp.Reachable {
		resp.Cost = res.Cost
		resp.Path = res.Path
		resp.Missing = res.Missing(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Join(boardio.ErrMalformedDocument, err))
		return
	}
	if !req.Color.IsPlayer() {
		req.Color = board.Red
	}
	b, err := req.Document.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg := s.store.Get()
	weights, err := cfg.Weights(req.Preset)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	budget := time.Duration(req.BudgetMS) * time.Millisecond
	if budget <= 0 {
		budget = defaultBudget
	}
	if budget > maxAnalyzeBudget {
		budget = maxAnalyzeBudget
	}
	settings := cfg.SearchSettings()
	// One-off analysis spends the whole budget on this position.
	settings.LowTimeThreshold = 0
	settings.MoveTimeFraction = 1
	if req.MaxDepth > 0 {
		settings.MaxDepth = req.MaxDepth
	}

	features, static := eval.Explain(b, req.Color, weights)
	engine := search.NewEngine(settings, weights, search.WithLogger(s.logger), search.WithMetrics(s.searchMetrics))
	res, ok := engine.Choose(r.Context(), b, req.Color, budget)
	if !ok {
		writeError(w, http.StatusConflict, errors.New("board is full"))
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{
		Action:   res.Action,
		Score:    res.Score,
		Source:   res.Source,
		Stats:    res.Stats,
		Features: features,
		Static:   static,
	})
}
