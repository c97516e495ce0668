package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 343, cfg.Match.MaxTurns)
	assert.Equal(t, 7, cfg.Match.RepeatLimit)
	assert.Equal(t, search.DefaultSettings(), cfg.SearchSettings())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
engine:
  preset: path
  low_time_threshold: 500ms
  depth_schedule:
    - {min_empty: 0, depth: 2}
match:
  board_size: 7
  red: {strategy: random}
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, eval.PresetPath, cfg.Engine.Preset)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.LowTimeThreshold)
	assert.Equal(t, []search.DepthStep{{MinEmpty: 0, Depth: 2}}, cfg.Engine.DepthSchedule)
	assert.Equal(t, 7, cfg.Match.BoardSize)
	assert.Equal(t, agent.StrategyRandom, cfg.Match.Red.Strategy)
	assert.Equal(t, agent.StrategyMinimax, cfg.Match.Blue.Strategy, "untouched fields keep defaults")
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Engine.GameTimeBudget = 90 * time.Second
	cfg.Engine.Weights = &eval.Weights{PathDiff: 3, Triangles: 2}
	cfg.Server.Addr = "127.0.0.1:9999"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"preset":        func(c *Config) { c.Engine.Preset = "aggressive" },
		"fraction":      func(c *Config) { c.Engine.MoveTimeFraction = 1.5 },
		"schedule":      func(c *Config) { c.Engine.DepthSchedule = []search.DepthStep{{MinEmpty: 0, Depth: 0}} },
		"opening":       func(c *Config) { c.Engine.Opening = "middle" },
		"board size":    func(c *Config) { c.Match.BoardSize = 0 },
		"strategy":      func(c *Config) { c.Match.Blue.Strategy = "telepathy" },
		"player preset": func(c *Config) { c.Match.Red.Preset = "nope" },
		"duplicate":     func(c *Config) { c.Tournament.Contenders[1].Name = c.Tournament.Contenders[0].Name },
		"parallelism":   func(c *Config) { c.Tournament.Parallelism = 0 },
		"elo k":         func(c *Config) { c.Tournament.EloK = 0 },
		"addr":          func(c *Config) { c.Server.Addr = "" },
		"rate":          func(c *Config) { c.Server.AnalyzeRate = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			err := cfg.Validate()
			var invalidErr *InvalidConfigError
			require.True(t, errors.As(err, &invalidErr), "expected InvalidConfigError, got %v", err)
			assert.NotEmpty(t, invalidErr.Field)
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match:\n  board_size: -3\n"), 0o600))
	_, err := Load(path)
	var invalidErr *InvalidConfigError
	assert.ErrorAs(t, err, &invalidErr)

	require.NoError(t, os.WriteFile(path, []byte("match: [unclosed"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestAgentOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.GameTimeBudget = time.Minute

	opts, err := cfg.AgentOptions(PlayerSpec{Strategy: agent.StrategyMinimax, Preset: eval.PresetMaterial})
	require.NoError(t, err)
	material, _ := eval.ParsePreset(eval.PresetMaterial)
	assert.Equal(t, material, opts.Weights)
	assert.Equal(t, time.Minute, opts.Budget)

	custom := eval.Weights{Pieces: 4}
	cfg.Engine.Weights = &custom
	opts, err = cfg.AgentOptions(PlayerSpec{})
	require.NoError(t, err)
	assert.Equal(t, custom, opts.Weights)
	assert.Equal(t, agent.StrategyMinimax, opts.Strategy)

	_, err = cfg.AgentOptions(PlayerSpec{Strategy: "telepathy"})
	assert.ErrorIs(t, err, agent.ErrUnknownStrategy)
}

func TestTournamentOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tournament.Parallelism = 3
	cfg.Match.EnforceTime = true
	opts := cfg.TournamentOptions()
	assert.Equal(t, 3, opts.Parallelism)
	assert.True(t, opts.Match.EnforceTime)
	assert.Equal(t, cfg.Tournament.BoardSize, opts.BoardSize)
}

func TestStore(t *testing.T) {
	store := NewStore(DefaultConfig())
	cfg := store.Get()
	cfg.Server.Addr = ":1"
	assert.Equal(t, ":8080", store.Get().Server.Addr, "Get returns a copy")

	store.Update(cfg)
	assert.Equal(t, ":1", store.Get().Server.Addr)
	assert.Equal(t, uint64(1), store.Generation())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, DefaultConfig()))
	store := NewStore(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, store, nil) }()

	updated := DefaultConfig()
	updated.Match.BoardSize = 9
	require.Eventually(t, func() bool {
		if err := Save(path, updated); err != nil {
			return false
		}
		return store.Get().Match.BoardSize == 9
	}, 5*time.Second, 50*time.Millisecond)

	// A broken file must not clobber the last good config.
	require.NoError(t, os.WriteFile(path, []byte("engine: {preset: nope}\n"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 9, store.Get().Match.BoardSize)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
