package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/tournament"
)

func newTournamentCmd(a *app) *cobra.Command {
	var (
		games, parallel, size int
		asJSON                bool
	)
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Run a round robin between the configured contenders and rank them by Elo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.TournamentOptions()
			if games > 0 {
				opts.GamesPerPair = games
			}
			if parallel > 0 {
				opts.Parallelism = parallel
			}
			if size > 0 {
				opts.BoardSize = size
			}
			opts.Logger = a.logger
			report, err := tournament.Run(cmd.Context(), a.cfg.Tournament.Contenders, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintln(out, standingsTable(report.Standings))
			return nil
		},
	}
	cmd.Flags().IntVar(&games, "games", 0, "games per pairing (default from config)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "games played at once (default from config)")
	cmd.Flags().IntVar(&size, "size", 0, "board size (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func standingsTable(standings []tournament.Standing) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "NAME", "ELO", "W", "L", "D")
	for i, s := range standings {
		t.Row(
			strconv.Itoa(i+1),
			s.Name,
			strconv.FormatFloat(s.Elo, 'f', 1, 64),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Draws),
		)
	}
	return t.Render()
}
