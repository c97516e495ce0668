// Package tournament plays a round robin between engine configurations and
// rates them with Elo. Games run in parallel; each owns its players and
// boards.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/referee"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

type Contender struct {
	Name     string         `json:"name" yaml:"name"`
	Strategy agent.Strategy `json:"strategy" yaml:"strategy"`
	Preset   string         `json:"preset" yaml:"preset"`
}

type Standing struct {
	Name   string  `json:"name"`
	Elo    float64 `json:"elo"`
	Games  int     `json:"games"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Draws  int     `json:"draws"`
}

type Game struct {
	Index   int             `json:"index"`
	Red     string          `json:"red"`
	Blue    string          `json:"blue"`
	Outcome referee.Outcome `json:"outcome"`
	Elapsed time.Duration   `json:"elapsed"`
}

type Report struct {
	Standings []Standing `json:"standings"`
	Games     []Game     `json:"games"`
}

type Options struct {
	BoardSize    int
	GamesPerPair int
	Parallelism  int
	EloK         float64
	InitialElo   float64
	Settings     search.Settings
	Match        referee.Options
	Logger       *slog.Logger
	// SearchMetrics and MatchMetrics are shared by every game.
	SearchMetrics *search.Metrics
	MatchMetrics  *referee.Metrics
}

func DefaultOptions() Options {
	return Options{
		BoardSize:    5,
		GamesPerPair: 2,
		Parallelism:  4,
		EloK:         DefaultEloK,
		InitialElo:   DefaultInitialElo,
		Settings:     search.DefaultSettings(),
		Match:        referee.DefaultOptions(),
	}
}

type pairing struct {
	red, blue int
}

// schedule pairs every two contenders GamesPerPair times, swapping colours
// on every other game.
func schedule(count, perPair int) []pairing {
	var out []pairing
	for i := 0; i < count; i++ {
		for j := i + 1; j < count; j++ {
			for g := 0; g < perPair; g++ {
				if g%2 == 0 {
					out = append(out, pairing{red: i, blue: j})
				} else {
					out = append(out, pairing{red: j, blue: i})
				}
			}
		}
	}
	return out
}

// Run plays the round robin. Ratings are applied in schedule order once all
// games are in, so the report does not depend on goroutine timing.
func Run(ctx context.Context, contenders []Contender, opts Options) (Report, error) {
	if len(contenders) < 2 {
		return Report{}, errors.New("a tournament needs at least two contenders")
	}
	if opts.GamesPerPair <= 0 {
		opts.GamesPerPair = 1
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.EloK <= 0 {
		opts.EloK = DefaultEloK
	}
	if opts.InitialElo == 0 {
		opts.InitialElo = DefaultInitialElo
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tournament")

	weights := make([]eval.Weights, len(contenders))
	seen := make(map[string]bool)
	for i, c := range contenders {
		if c.Name == "" || seen[c.Name] {
			return Report{}, fmt.Errorf("contender %d: name must be unique and non-empty", i)
		}
		seen[c.Name] = true
		if _, err := agent.ParseStrategy(string(c.Strategy)); err != nil {
			return Report{}, fmt.Errorf("contender %s: %w", c.Name, err)
		}
		w, err := eval.ParsePreset(c.Preset)
		if err != nil {
			return Report{}, fmt.Errorf("contender %s: %w", c.Name, err)
		}
		weights[i] = w
	}

	pairs := schedule(len(contenders), opts.GamesPerPair)
	games := make([]Game, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for idx, p := range pairs {
		idx, p := idx, p
		g.Go(func() error {
			game, err := playGame(gctx, idx, contenders, weights, p, opts, logger)
			games[idx] = game
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Report{Games: games}, err
	}

	standings := make([]Standing, len(contenders))
	for i, c := range contenders {
		standings[i] = Standing{Name: c.Name, Elo: opts.InitialElo}
	}
	for i, game := range games {
		red, blue := &standings[pairs[i].red], &standings[pairs[i].blue]
		var result float64
		switch game.Outcome.Status {
		case referee.StatusRedWon:
			result = 1
			red.Wins++
			blue.Losses++
		case referee.StatusBlueWon:
			result = 0
			red.Losses++
			blue.Wins++
		case referee.StatusDraw:
			result = 0.5
			red.Draws++
			blue.Draws++
		default:
			continue
		}
		red.Games++
		blue.Games++
		updateElo(red, blue, result, opts.EloK)
	}
	sortStandings(standings)
	logger.Info("tournament finished", "games", len(games), "leader", standings[0].Name, "elo", standings[0].Elo)
	return Report{Standings: standings, Games: games}, nil
}

func playGame(ctx context.Context, idx int, contenders []Contender, weights []eval.Weights, p pairing, opts Options, logger *slog.Logger) (Game, error) {
	red, blue := contenders[p.red], contenders[p.blue]
	game := Game{Index: idx, Red: red.Name, Blue: blue.Name}
	players := make([]agent.Player, 2)
	for i, side := range []struct {
		color board.Color
		c     Contender
		w     eval.Weights
	}{
		{board.Red, red, weights[p.red]},
		{board.Blue, blue, weights[p.blue]},
	} {
		a, err := agent.New(side.color, opts.BoardSize, agent.Options{
			Strategy: side.c.Strategy,
			Settings: opts.Settings,
			Weights:  side.w,
			Budget:   opts.Match.Budget,
			Seed:     int64(idx*2 + i),
			Logger:   logger,
			Metrics:  opts.SearchMetrics,
		})
		if err != nil {
			return game, err
		}
		players[i] = a
	}
	matchOpts := opts.Match
	matchOpts.Observer = nil
	matchOpts.Logger = logger
	matchOpts.Metrics = opts.MatchMetrics
	m, err := referee.NewMatch(opts.BoardSize, players[0], players[1], matchOpts)
	if err != nil {
		return game, err
	}
	start := time.Now()
	game.Outcome = m.Run(ctx)
	game.Elapsed = time.Since(start)
	if game.Outcome.Status == referee.StatusAborted {
		return game, ctx.Err()
	}
	logger.Debug("game finished", "index", idx, "red", red.Name, "blue", blue.Name,
		"result", game.Outcome.Result(), "turns", game.Outcome.Turns)
	return game, nil
}
