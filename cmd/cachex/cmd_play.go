package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/boardio"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/config"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/referee"
)

type playFlags struct {
	size       int
	red, blue  string
	redPreset  string
	bluePreset string
	maxTurns   int
	quiet      bool
}

func newPlayCmd(a *app) *cobra.Command {
	var f playFlags
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one engine-vs-engine match and print every move",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, a, f)
		},
	}
	cmd.Flags().IntVar(&f.size, "size", 0, "board size (default from config)")
	cmd.Flags().StringVar(&f.red, "red", "", "red strategy")
	cmd.Flags().StringVar(&f.blue, "blue", "", "blue strategy")
	cmd.Flags().StringVar(&f.redPreset, "red-preset", "", "red evaluator preset")
	cmd.Flags().StringVar(&f.bluePreset, "blue-preset", "", "blue evaluator preset")
	cmd.Flags().IntVar(&f.maxTurns, "max-turns", 0, "turn limit before a draw (default from config)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print the result")
	return cmd
}

func overrideSpec(spec config.PlayerSpec, strategy, preset string) config.PlayerSpec {
	if strategy != "" {
		spec.Strategy = agent.Strategy(strategy)
	}
	if preset != "" {
		spec.Preset = preset
	}
	return spec
}

func runPlay(cmd *cobra.Command, a *app, f playFlags) error {
	cfg := a.cfg
	size := cfg.Match.BoardSize
	if f.size > 0 {
		size = f.size
	}
	if f.maxTurns > 0 {
		cfg.Match.MaxTurns = f.maxTurns
	}
	specs := []config.PlayerSpec{
		overrideSpec(cfg.Match.Red, f.red, f.redPreset),
		overrideSpec(cfg.Match.Blue, f.blue, f.bluePreset),
	}
	players := make([]agent.Player, 2)
	for i, color := range []board.Color{board.Red, board.Blue} {
		opts, err := cfg.AgentOptions(specs[i])
		if err != nil {
			return fmt.Errorf("%s player: %w", color, err)
		}
		opts.Logger = a.logger
		p, err := agent.New(color, size, opts)
		if err != nil {
			return fmt.Errorf("%s player: %w", color, err)
		}
		players[i] = p
	}

	out := cmd.OutOrStdout()
	opts := cfg.MatchOptions()
	opts.Logger = a.logger
	if !f.quiet {
		opts.Observer = func(ev referee.Event) {
			if ev.Kind != referee.EventMove {
				return
			}
			e := ev.Entry
			line := fmt.Sprintf("%3d %-4s %s", e.Turn, e.Color, e.Action)
			if len(e.Captured) > 0 {
				line += fmt.Sprintf(" captures %v", e.Captured)
			}
			if e.Depth > 0 {
				line += fmt.Sprintf(" depth %d", e.Depth)
			}
			fmt.Fprintln(out, line)
		}
	}
	m, err := referee.NewMatch(size, players[0], players[1], opts)
	if err != nil {
		return err
	}
	outcome := m.Run(cmd.Context())
	fmt.Fprintln(out, describeOutcome(outcome))
	fmt.Fprint(out, boardio.Render(m.Board(), boardio.RenderOptions{Color: isTerminal(out), Labels: true}))
	return nil
}

func describeOutcome(o referee.Outcome) string {
	switch o.Status {
	case referee.StatusRedWon, referee.StatusBlueWon:
		return fmt.Sprintf("%s wins by %s after %d turns", o.Winner, o.Reason, o.Turns)
	case referee.StatusDraw:
		return fmt.Sprintf("draw by %s after %d turns", o.Reason, o.Turns)
	default:
		return fmt.Sprintf("match %s: %s", o.Status, o.Detail)
	}
}
