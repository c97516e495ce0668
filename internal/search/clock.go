package search

import "time"

// Clock tracks one player's wall-time allowance over a whole game.
type Clock struct {
	budget time.Duration
	used   time.Duration
}

func NewClock(budget time.Duration) *Clock {
	return &Clock{budget: budget}
}

// GameBudget is the default allowance for an n×n game: n² seconds.
func GameBudget(n int) time.Duration {
	return time.Duration(n*n) * time.Second
}

func (c *Clock) Budget() time.Duration {
	return c.budget
}

func (c *Clock) Used() time.Duration {
	return c.used
}

func (c *Clock) Remaining() time.Duration {
	return c.budget - c.used
}

func (c *Clock) Charge(d time.Duration) {
	c.used += d
}

func (c *Clock) Exhausted() bool {
	return c.Remaining() <= 0
}
