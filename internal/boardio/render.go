package boardio

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

type RenderOptions struct {
	// Color enables ANSI styling. Output without it is plain ASCII.
	Color bool
	// Highlight marks cells, typically a shortest path.
	Highlight []board.Coord
	// Labels adds row and column indices.
	Labels bool
}

var (
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	blueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func glyph(c board.Color, marked bool) string {
	switch {
	case c == board.Red && marked:
		return "R"
	case c == board.Red:
		return "r"
	case c == board.Blue && marked:
		return "B"
	case c == board.Blue:
		return "b"
	case marked:
		return "*"
	default:
		return "."
	}
}

func style(c board.Color, marked bool) lipgloss.Style {
	switch {
	case c == board.Empty && marked:
		return pathStyle
	case c == board.Red:
		return redStyle
	case c == board.Blue:
		return blueStyle
	default:
		return emptyStyle
	}
}

// Render draws the rhombus with row 0 on top, each row shifted half a cell
// further right than the one above it.
func Render(b *board.Board, opts RenderOptions) string {
	marked := make(map[board.Coord]bool, len(opts.Highlight))
	for _, c := range opts.Highlight {
		marked[c] = true
	}
	paint := func(s string, st lipgloss.Style) string {
		if opts.Color {
			return st.Render(s)
		}
		return s
	}
	n := b.Size()
	width := len(strconv.Itoa(n - 1))
	pad := func(i int) string {
		s := strconv.Itoa(i)
		return strings.Repeat(" ", width-len(s)) + s
	}

	var sb strings.Builder
	if opts.Labels {
		sb.WriteString(strings.Repeat(" ", width+1))
		for q := 0; q < n; q++ {
			if q > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(paint(strconv.Itoa(q%10), labelStyle))
		}
		sb.WriteByte('\n')
	}
	for r := 0; r < n; r++ {
		if opts.Labels {
			sb.WriteString(paint(pad(r), labelStyle))
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Repeat(" ", r))
		for q := 0; q < n; q++ {
			if q > 0 {
				sb.WriteByte(' ')
			}
			c := board.Coord{R: r, Q: q}
			color, m := b.At(c), marked[c]
			sb.WriteString(paint(glyph(color, m), style(color, m)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
