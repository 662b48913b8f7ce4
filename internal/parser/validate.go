package parser

import (
	"fmt"

	"git.lost.host/meutraa/scanline/internal/game"
)

// validateChains rejects next ids that do not resolve and chains that loop
// back onto themselves. Notes are visited in parse order so the reported
// note is stable for a given text.
func validateChains(chart *game.Chart) error {
	for _, note := range chart.Notes {
		if !note.HasNext() {
			continue
		}
		if _, ok := chart.Note(note.NextID); !ok {
			return &game.StructuralError{
				NoteID: note.ID,
				Reason: fmt.Sprintf("dangling next id %d", note.NextID),
			}
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[int]int, len(chart.Notes))
	for _, start := range chart.Notes {
		if state[start.ID] != unvisited {
			continue
		}
		path := []*game.NoteModel{}
		n := start
		for {
			state[n.ID] = onPath
			path = append(path, n)
			if !n.HasNext() {
				break
			}
			next, _ := chart.Note(n.NextID)
			if state[next.ID] == onPath {
				return &game.StructuralError{
					NoteID: next.ID,
					Reason: fmt.Sprintf("cycle through note %d", n.ID),
				}
			}
			if state[next.ID] == done {
				break
			}
			n = next
		}
		for _, p := range path {
			state[p.ID] = done
		}
	}
	return nil
}
