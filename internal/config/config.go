// Package config holds the engine, match, tournament and server settings
// shared by the CLI commands.
package config

import (
	"fmt"
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/referee"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/tournament"
)

const MaxBoardSize = 64

type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &InvalidConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Match      MatchConfig      `json:"match" yaml:"match"`
	Tournament TournamentConfig `json:"tournament" yaml:"tournament"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

type EngineConfig struct {
	Preset string `json:"preset" yaml:"preset"`
	// Weights replaces the preset when set.
	Weights *eval.Weights `json:"weights,omitempty" yaml:"weights,omitempty"`
	// GameTimeBudget of zero means n² seconds.
	GameTimeBudget          time.Duration      `json:"game_time_budget" yaml:"game_time_budget"`
	LowTimeThreshold        time.Duration      `json:"low_time_threshold" yaml:"low_time_threshold"`
	MoveTimeFraction        float64            `json:"move_time_fraction" yaml:"move_time_fraction"`
	DepthSchedule           []search.DepthStep `json:"depth_schedule" yaml:"depth_schedule"`
	MaxDepth                int                `json:"max_depth" yaml:"max_depth"`
	ReturnLastCompleteDepth bool               `json:"return_last_complete_depth" yaml:"return_last_complete_depth"`
	Opening                 search.Opening     `json:"opening" yaml:"opening"`
	Steal                   bool               `json:"steal" yaml:"steal"`
}

type PlayerSpec struct {
	Strategy agent.Strategy `json:"strategy" yaml:"strategy"`
	// Preset overrides the engine preset for this player.
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`
}

type MatchConfig struct {
	BoardSize   int        `json:"board_size" yaml:"board_size"`
	MaxTurns    int        `json:"max_turns" yaml:"max_turns"`
	RepeatLimit int        `json:"repeat_limit" yaml:"repeat_limit"`
	EnforceTime bool       `json:"enforce_time" yaml:"enforce_time"`
	Red         PlayerSpec `json:"red" yaml:"red"`
	Blue        PlayerSpec `json:"blue" yaml:"blue"`
}

type TournamentConfig struct {
	BoardSize    int                    `json:"board_size" yaml:"board_size"`
	GamesPerPair int                    `json:"games_per_pair" yaml:"games_per_pair"`
	Parallelism  int                    `json:"parallelism" yaml:"parallelism"`
	EloK         float64                `json:"elo_k" yaml:"elo_k"`
	InitialElo   float64                `json:"initial_elo" yaml:"initial_elo"`
	Contenders   []tournament.Contender `json:"contenders" yaml:"contenders"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	// AnalyzeRate is requests per second across /api/analyze.
	AnalyzeRate    float64       `json:"analyze_rate" yaml:"analyze_rate"`
	AnalyzeBurst   int           `json:"analyze_burst" yaml:"analyze_burst"`
	WSPingInterval time.Duration `json:"ws_ping_interval" yaml:"ws_ping_interval"`
	// MaxMatches caps the matches kept in memory, oldest finished first.
	MaxMatches int `json:"max_matches" yaml:"max_matches"`
}

func DefaultConfig() Config {
	s := search.DefaultSettings()
	return Config{
		Engine: EngineConfig{
			Preset:                  eval.PresetBalanced,
			LowTimeThreshold:        s.LowTimeThreshold,
			MoveTimeFraction:        s.MoveTimeFraction,
			DepthSchedule:           s.DepthSchedule,
			MaxDepth:                s.MaxDepth,
			ReturnLastCompleteDepth: s.ReturnLastCompleteDepth,
			Opening:                 s.Opening,
			Steal:                   s.Steal,
		},
		Match: MatchConfig{
			BoardSize:   5,
			MaxTurns:    referee.DefaultMaxTurns,
			RepeatLimit: referee.DefaultRepeatLimit,
			Red:         PlayerSpec{Strategy: agent.StrategyMinimax},
			Blue:        PlayerSpec{Strategy: agent.StrategyMinimax},
		},
		Tournament: TournamentConfig{
			BoardSize:    5,
			GamesPerPair: 2,
			Parallelism:  4,
			EloK:         tournament.DefaultEloK,
			InitialElo:   tournament.DefaultInitialElo,
			Contenders: []tournament.Contender{
				{Name: "balanced", Strategy: agent.StrategyMinimax, Preset: eval.PresetBalanced},
				{Name: "path", Strategy: agent.StrategyMinimax, Preset: eval.PresetPath},
				{Name: "structure", Strategy: agent.StrategyMinimax, Preset: eval.PresetStructure},
				{Name: "random", Strategy: agent.StrategyRandom},
			},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AnalyzeRate:    10,
			AnalyzeBurst:   20,
			WSPingInterval: 25 * time.Second,
			MaxMatches:     64,
		},
	}
}

func (c *Config) Validate() error {
	e := c.Engine
	if _, err := eval.ParsePreset(e.Preset); err != nil {
		return invalid("engine.preset", "%v", err)
	}
	if e.GameTimeBudget < 0 || e.LowTimeThreshold < 0 {
		return invalid("engine", "durations must not be negative")
	}
	if e.MoveTimeFraction < 0 || e.MoveTimeFraction > 1 {
		return invalid("engine.move_time_fraction", "must be within [0, 1], got %g", e.MoveTimeFraction)
	}
	if e.MaxDepth < 0 {
		return invalid("engine.max_depth", "must not be negative")
	}
	for i, step := range e.DepthSchedule {
		if step.Depth < 1 || step.MinEmpty < 0 {
			return invalid(fmt.Sprintf("engine.depth_schedule[%d]", i), "depth must be positive and min_empty non-negative")
		}
	}
	if _, err := search.ParseOpening(string(e.Opening)); err != nil {
		return invalid("engine.opening", "%v", err)
	}

	m := c.Match
	if m.BoardSize < 1 || m.BoardSize > MaxBoardSize {
		return invalid("match.board_size", "must be between 1 and %d, got %d", MaxBoardSize, m.BoardSize)
	}
	if m.MaxTurns < 0 || m.RepeatLimit < 0 {
		return invalid("match", "max_turns and repeat_limit must not be negative")
	}
	if err := m.Red.validate(); err != nil {
		return invalid("match.red", "%v", err)
	}
	if err := m.Blue.validate(); err != nil {
		return invalid("match.blue", "%v", err)
	}

	t := c.Tournament
	if t.BoardSize < 1 || t.BoardSize > MaxBoardSize {
		return invalid("tournament.board_size", "must be between 1 and %d, got %d", MaxBoardSize, t.BoardSize)
	}
	if t.GamesPerPair < 1 || t.Parallelism < 1 {
		return invalid("tournament", "games_per_pair and parallelism must be at least 1")
	}
	if t.EloK <= 0 {
		return invalid("tournament.elo_k", "must be positive")
	}
	names := make(map[string]bool)
	for i, ct := range t.Contenders {
		field := fmt.Sprintf("tournament.contenders[%d]", i)
		if ct.Name == "" || names[ct.Name] {
			return invalid(field, "name %q must be unique and non-empty", ct.Name)
		}
		names[ct.Name] = true
		if err := (PlayerSpec{Strategy: ct.Strategy, Preset: ct.Preset}).validate(); err != nil {
			return invalid(field, "%v", err)
		}
	}

	s := c.Server
	if s.Addr == "" {
		return invalid("server.addr", "must be set")
	}
	if s.AnalyzeRate <= 0 || s.AnalyzeBurst < 1 {
		return invalid("server", "analyze_rate must be positive and analyze_burst at least 1")
	}
	if s.WSPingInterval < 0 || s.MaxMatches < 0 {
		return invalid("server", "ws_ping_interval and max_matches must not be negative")
	}
	return nil
}

func (p PlayerSpec) validate() error {
	if _, err := agent.ParseStrategy(string(p.Strategy)); err != nil {
		return err
	}
	if p.Preset == "" {
		return nil
	}
	_, err := eval.ParsePreset(p.Preset)
	return err
}

// SearchSettings converts the engine section.
func (c Config) SearchSettings() search.Settings {
	e := c.Engine
	opening, err := search.ParseOpening(string(e.Opening))
	if err != nil {
		opening = search.OpeningCorner
	}
	return search.Settings{
		MaxDepth:                e.MaxDepth,
		DepthSchedule:           append([]search.DepthStep(nil), e.DepthSchedule...),
		LowTimeThreshold:        e.LowTimeThreshold,
		MoveTimeFraction:        e.MoveTimeFraction,
		ReturnLastCompleteDepth: e.ReturnLastCompleteDepth,
		Opening:                 opening,
		Steal:                   e.Steal,
	}
}

// Weights resolves preset, falling back to the engine preset when empty.
// Explicit engine weights win over both.
func (c Config) Weights(preset string) (eval.Weights, error) {
	if c.Engine.Weights != nil && !c.Engine.Weights.IsZero() && preset == "" {
		return *c.Engine.Weights, nil
	}
	if preset == "" {
		preset = c.Engine.Preset
	}
	return eval.ParsePreset(preset)
}

// AgentOptions builds the options for one player of a match.
func (c Config) AgentOptions(p PlayerSpec) (agent.Options, error) {
	strategy, err := agent.ParseStrategy(string(p.Strategy))
	if err != nil {
		return agent.Options{}, err
	}
	w, err := c.Weights(p.Preset)
	if err != nil {
		return agent.Options{}, err
	}
	return agent.Options{
		Strategy: strategy,
		Settings: c.SearchSettings(),
		Weights:  w,
		Budget:   c.Engine.GameTimeBudget,
	}, nil
}

func (c Config) MatchOptions() referee.Options {
	return referee.Options{
		MaxTurns:    c.Match.MaxTurns,
		RepeatLimit: c.Match.RepeatLimit,
		Budget:      c.Engine.GameTimeBudget,
		EnforceTime: c.Match.EnforceTime,
	}
}

func (c Config) TournamentOptions() tournament.Options {
	opts := tournament.DefaultOptions()
	opts.BoardSize = c.Tournament.BoardSize
	opts.GamesPerPair = c.Tournament.GamesPerPair
	opts.Parallelism = c.Tournament.Parallelism
	opts.EloK = c.Tournament.EloK
	opts.InitialElo = c.Tournament.InitialElo
	opts.Settings = c.SearchSettings()
	opts.Match = c.MatchOptions()
	return opts
}
