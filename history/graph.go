// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package history

import (
	"bytes"
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// Graph plots the feed count of runs, oldest to newest. runs is expected newest
// first, as returned by Recent.
func Graph(runs []Run, width, height int) string {
	if len(runs) == 0 {
		return "No runs recorded yet.\n"
	}

	counts := make([]float64, 0, len(runs))
	peak := 0.0
	for i := len(runs) - 1; i >= 0; i-- {
		c := float64(runs[i].FeedCount)
		counts = append(counts, c)
		if c > peak {
			peak = c
		}
	}
	if len(counts) == 1 {
		counts = append(counts, counts[0])
	}

	var buf bytes.Buffer
	buf.WriteString("Active feeds per run:\n")
	buf.WriteString(asciigraph.Plot(counts,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(peak+1),
		asciigraph.Caption("")))
	buf.WriteString("\n\n")
	buf.WriteString(fmt.Sprintf("Showing %d runs\n", len(runs)))
	return buf.String()
}
