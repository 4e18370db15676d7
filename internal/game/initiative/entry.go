// Package initiative owns turn sequencing for an encounter: the totally
// ordered initiative roster, the round counter, surprise rounds, mid-combat
// roster edits, and delayed (readied) turns. Every operation takes a
// RoundState value and returns a new one; the host threads the latest
// snapshot forward.
package initiative

import (
	"sort"

	"github.com/calder-hayes/skirmish/internal/game/dice"
)

// Entry is one actor's initiative roll. The ordering over entries is the
// sole source of turn sequencing, so it must be total: ties on the roll
// total break by modifier, remaining ties by actor id.
type Entry struct {
	ActorID  string `json:"actor_id"`
	Roll     int    `json:"roll"` // raw d20
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
}

// Before reports whether a acts before b: total descending, then modifier
// descending, then actor id descending.
func Before(a, b Entry) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Modifier != b.Modifier {
		return a.Modifier > b.Modifier
	}
	return a.ActorID > b.ActorID
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return Before(entries[i], entries[j]) })
}

// Roll rolls initiative for one actor: d20 + modifier.
func Roll(actorID string, modifier int, src dice.Source) Entry {
	r := dice.Roll(20, modifier, src)
	return Entry{
		ActorID:  actorID,
		Roll:     r.Rolls[0],
		Modifier: modifier,
		Total:    r.Total(),
	}
}

// RollAll rolls initiative for every actor in mods and returns the entries
// in acting order. Actors are rolled in sorted-id order so that a fixed
// seed always assigns the same raw values to the same actors.
func RollAll(mods map[string]int, src dice.Source) []Entry {
	ids := make([]string, 0, len(mods))
	for id := range mods {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Roll(id, mods[id], src))
	}
	sortEntries(entries)
	return entries
}
