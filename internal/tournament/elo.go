package tournament

import (
	"math"
	"sort"
)

const (
	DefaultEloK       = 24.0
	DefaultInitialElo = 1200.0
)

// updateElo applies one game. resultForA is 1 for a win, 0.5 for a draw and
// 0 for a loss.
func updateElo(a, b *Standing, resultForA, k float64) {
	expA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	expB := 1.0 / (1.0 + math.Pow(10, (a.Elo-b.Elo)/400.0))
	a.Elo += k * (resultForA - expA)
	b.Elo += k * ((1.0 - resultForA) - expB)
}

// sortStandings orders by Elo, then wins, then name.
func sortStandings(list []Standing) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Elo != list[j].Elo {
			return list[i].Elo > list[j].Elo
		}
		if list[i].Wins != list[j].Wins {
			return list[i].Wins > list[j].Wins
		}
		return list[i].Name < list[j].Name
	})
}
