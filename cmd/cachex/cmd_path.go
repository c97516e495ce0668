package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/boardio"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/pathcost"
)

type pathReport struct {
	Color     board.Color   `json:"color"`
	Reachable bool          `json:"reachable"`
	Cost      int           `json:"cost"`
	Path      []board.Coord `json:"path"`
}

func newPathCmd(a *app) *cobra.Command {
	var (
		colorName string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "path FILE",
		Short: "Report the cheapest completion path for a position document (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := board.ParseColor(colorName)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			b, err := doc.Build()
			if err != nil {
				return err
			}
			var res pathcost.Result
			if doc.PointToPoint() {
				res = pathcost.Between(b, color, doc.Start.Coord(), doc.Goal.Coord())
			} else {
				res = pathcost.ShortestPath(b, color)
			}
			a.logger.Debug("path computed", "color", color.String(), "cost", res.Cost, "cells", len(res.Path))

			out := cmd.OutOrStdout()
			if asJSON {
				report := pathReport{Color: color, Reachable: res.Reachable(), Cost: -1}
				if report.Reachable {
					report.Cost, report.Path = res.Cost, res.Path
				}
				return json.NewEncoder(out).Encode(report)
			}
			if !res.Reachable() {
				fmt.Fprintf(out, "%s cannot connect\n", color)
			} else {
				cells := make([]string, len(res.Path))
				for i, c := range res.Path {
					cells[i] = c.String()
				}
				fmt.Fprintf(out, "cost: %d\n", res.Cost)
				fmt.Fprintf(out, "path: %s\n", strings.Join(cells, " "))
			}
			fmt.Fprint(out, boardio.Render(b, boardio.RenderOptions{
				Color:     isTerminal(out),
				Highlight: res.Path,
				Labels:    true,
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&colorName, "color", "blue", "colour whose path is measured")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func readDocument(stdin io.Reader, name string) (boardio.Document, error) {
	if name == "-" {
		return boardio.Parse(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return boardio.Document{}, err
	}
	defer f.Close()
	doc, err := boardio.Parse(f)
	if err != nil {
		return boardio.Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}
