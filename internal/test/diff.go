package test

import (
	"strings"

	"github.com/webpack/webpack-sources/internal/logger"
)

// Diff renders a line-by-line diff of two multi-line strings. Removed lines
// start with "-", added lines with "+" and unchanged lines with " ".
func Diff(old string, new string, color bool) string {
	d := differ{color: color}
	d.diff(strings.Split(old, "\n"), strings.Split(new, "\n"))
	return strings.Join(d.lines, "\n")
}

type differ struct {
	lines []string
	color bool
}

func (d *differ) emit(marker string, line string, color string) {
	if d.color {
		d.lines = append(d.lines, color+marker+line+logger.TerminalColors.Reset)
	} else {
		d.lines = append(d.lines, marker+line)
	}
}

// Splits around the longest common run of lines and recurses on both sides
func (d *differ) diff(old []string, new []string) {
	o, n, common := longestCommonRun(old, new)
	if common == 0 {
		for _, line := range old {
			d.emit("-", line, logger.TerminalColors.Red)
		}
		for _, line := range new {
			d.emit("+", line, logger.TerminalColors.Green)
		}
		return
	}
	d.diff(old[:o], new[:n])
	for _, line := range old[o : o+common] {
		d.emit(" ", line, logger.TerminalColors.Dim)
	}
	d.diff(old[o+common:], new[n+common:])
}

// Dynamic programming over two rows of run lengths
func longestCommonRun(a []string, b []string) (int, int, int) {
	prev := make([]int, len(b)+1)
	next := make([]int, len(b)+1)
	best, endA, endB := 0, 0, 0

	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				next[j+1] = 0
				continue
			}
			next[j+1] = prev[j] + 1
			if next[j+1] > best {
				best = next[j+1]
				endA = i + 1
				endB = j + 1
			}
		}
		prev, next = next, prev
	}

	return endA - best, endB - best, best
}
