package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/boardio"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/config"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/referee"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRequest struct {
	Size     int                `json:"size"`
	Red      *config.PlayerSpec `json:"red,omitempty"`
	Blue     *config.PlayerSpec `json:"blue,omitempty"`
	MaxTurns int                `json:"max_turns,omitempty"`
}

type MatchSummary struct {
	ID        string            `json:"id"`
	Size      int               `json:"size"`
	Red       config.PlayerSpec `json:"red"`
	Blue      config.PlayerSpec `json:"blue"`
	CreatedAt time.Time         `json:"created_at"`
	Turns     int               `json:"turns"`
	Outcome   referee.Outcome   `json:"outcome"`
}

type MatchDetail struct {
	MatchSummary
	History []referee.HistoryEntry `json:"history"`
	Board   boardio.Document       `json:"board"`
}

type matchEvent struct {
	Kind    referee.EventKind     `json:"kind"`
	Entry   *referee.HistoryEntry `json:"entry,omitempty"`
	Outcome *referee.Outcome      `json:"outcome,omitempty"`
	Board   boardio.Document      `json:"board"`
}

type matchRun struct {
	mu      sync.Mutex
	summary MatchSummary
	history []referee.HistoryEntry
	board   *board.Board
	cancel  context.CancelFunc
}

func (m *matchRun) detail() MatchDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MatchDetail{
		MatchSummary: m.summary,
		History:      append([]referee.HistoryEntry(nil), m.history...),
		Board:        boardio.FromBoard(m.board),
	}
}

func (m *matchRun) observe(ev referee.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = ev.Board
	if ev.Entry != nil {
		m.history = append(m.history, *ev.Entry)
		m.summary.Turns = len(m.history)
	}
	if ev.Outcome != nil {
		m.summary.Outcome = *ev.Outcome
		m.summary.Turns = ev.Outcome.Turns
	}
}

func (m *matchRun) finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary.Outcome.Finished()
}

// matchRegistry owns the engine-vs-engine matches started over HTTP.
type matchRegistry struct {
	mu      sync.Mutex
	runs    map[string]*matchRun
	order   []string
	wg      sync.WaitGroup
	hub     *Hub
	logger  *slog.Logger
	search  *search.Metrics
	referee *referee.Metrics
}

func newMatchRegistry(hub *Hub, logger *slog.Logger, sm *search.Metrics, rm *referee.Metrics) *matchRegistry {
	return &matchRegistry{
		runs:    make(map[string]*matchRun),
		hub:     hub,
		logger:  logger,
		search:  sm,
		referee: rm,
	}
}

// Start builds both players from cfg and req and plays the match in the
// background until it ends or ctx is cancelled.
func (r *matchRegistry) Start(ctx context.Context, cfg config.Config, req MatchRequest) (MatchSummary, error) {
	size := req.Size
	if size == 0 {
		size = cfg.Match.BoardSize
	}
	if size < 1 || size > config.MaxBoardSize {
		return MatchSummary{}, fmt.Errorf("board size must be between 1 and %d", config.MaxBoardSize)
	}
	red, blue := cfg.Match.Red, cfg.Match.Blue
	if req.Red != nil {
		red = *req.Red
	}
	if req.Blue != nil {
		blue = *req.Blue
	}

	id := uuid.NewString()
	logger := r.logger.With("match_id", id)
	players := make([]agent.Player, 2)
	for i, side := range []struct {
		color board.Color
		spec  config.PlayerSpec
	}{{board.Red, red}, {board.Blue, blue}} {
		opts, err := cfg.AgentOptions(side.spec)
		if err != nil {
			return MatchSummary{}, fmt.Errorf("%s player: %w", side.color, err)
		}
		opts.Logger = logger
		opts.Metrics = r.search
		p, err := agent.New(side.color, size, opts)
		if err != nil {
			return MatchSummary{}, err
		}
		players[i] = p
	}

	run := &matchRun{
		summary: MatchSummary{
			ID:        id,
			Size:      size,
			Red:       red,
			Blue:      blue,
			CreatedAt: time.Now().UTC(),
			Outcome:   referee.Outcome{Status: referee.StatusRunning},
		},
		board: board.New(size),
	}
	matchOpts := cfg.MatchOptions()
	if req.MaxTurns > 0 {
		matchOpts.MaxTurns = req.MaxTurns
	}
	matchOpts.Logger = logger
	matchOpts.Metrics = r.referee
	matchOpts.Observer = func(ev referee.Event) {
		run.observe(ev)
		payload := matchEvent{Kind: ev.Kind, Entry: ev.Entry, Outcome: ev.Outcome, Board: boardio.FromBoard(ev.Board)}
		if !r.hub.Broadcast(wsMessage{Type: "match_event", MatchID: id, Payload: mustMarshal(payload)}) {
			logger.Debug("match event dropped", "kind", string(ev.Kind))
		}
	}
	m, err := referee.NewMatch(size, players[0], players[1], matchOpts)
	if err != nil {
		return MatchSummary{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	run.cancel = cancel
	r.mu.Lock()
	r.runs[id] = run
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		m.Run(runCtx)
	}()
	return run.detail().MatchSummary, nil
}

func (r *matchRegistry) Get(id string) (MatchDetail, error) {
	r.mu.Lock()
	run, ok := r.runs[id]
	r.mu.Unlock()
	if !ok {
		return MatchDetail{}, ErrMatchNotFound
	}
	return run.detail(), nil
}

func (r *matchRegistry) List() []MatchSummary {
	r.mu.Lock()
	runs := make([]*matchRun, 0, len(r.order))
	for _, id := range r.order {
		runs = append(runs, r.runs[id])
	}
	r.mu.Unlock()
	out := make([]MatchSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.detail().MatchSummary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Prune forgets the oldest finished matches beyond limit.
func (r *matchRegistry) Prune(limit int) {
	if limit <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	excess := len(r.order) - limit
	kept := r.order[:0]
	for _, id := range r.order {
		if excess > 0 && r.runs[id].finished() {
			delete(r.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// Stop cancels every running match and waits for them to finish.
func (r *matchRegistry) Stop() {
	r.mu.Lock()
	for _, run := range r.runs {
		run.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
