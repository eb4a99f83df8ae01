// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Package itemdata supplies the per-room sequence of round items: a
// secret word plus the image each player is shown while guessing it.
//
// Items come from three tab-separated files (easy, ideal, difficult
// pairs); a game of n rounds draws its first item from the easy tier,
// its second from the ideal tier, and every further item from the
// difficult tier. Sequential draws resume where the previous room left
// off, so one file is split across successive player pairs; shuffled
// draws sample randomly, reproducibly when a seed is set.
//
// The game mode decides what each player sees: in "same" mode both see
// the first image, in "different" mode each sees their own column, and
// in "one_blind" mode only one player sees an image, alternating every
// drawn item so the blind role switches round to round.
package itemdata

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Mode selects how images are distributed between the two players.
type Mode string

const (
	ModeSame      Mode = "same"
	ModeDifferent Mode = "different"
	ModeOneBlind  Mode = "one_blind"
)

// Tier file names inside the data directory.
const (
	fileEasy      = "pairs-easy.tsv"
	fileIdeal     = "pairs-ideal.tsv"
	fileDifficult = "pairs-difficult.tsv"
)

// Item is one round's material: the secret word and one image URL per
// player in stable (sorted by user ID) player order. An empty entry
// means that player sees no image for the round.
type Item struct {
	Word   string
	Images [2]string
}

// pair is one raw file row before the game mode is applied.
type pair struct {
	word   string
	first  string
	second string // empty when the row has only one image column
}

// Source draws round items for new rooms. Safe for concurrent use.
type Source struct {
	mu        sync.Mutex
	mode      Mode
	shuffle   bool
	rng       *rand.Rand
	tiers     [3][]pair
	cursors   [3]int
	blindSwap bool
}

// Open loads the three tier files from dir. A zero seed picks a
// time-based seed; any other value makes shuffled sampling
// reproducible.
func Open(dir string, mode Mode, shuffle bool, seed int64) (*Source, error) {
	switch mode {
	case ModeSame, ModeDifferent, ModeOneBlind:
	default:
		return nil, fmt.Errorf("itemdata: unknown game mode %q", mode)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	source := &Source{
		mode:    mode,
		shuffle: shuffle,
		rng:     rand.New(rand.NewSource(seed)),
	}

	for i, name := range []string{fileEasy, fileIdeal, fileDifficult} {
		rows, err := loadPairs(filepath.Join(dir, name), mode)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("itemdata: %s contains no usable rows", name)
		}
		source.tiers[i] = rows
	}
	return source, nil
}

// loadPairs reads one tier file. Rows need at least a word and one
// image column; shorter rows are skipped. "different" mode requires a
// second image column on every row.
func loadPairs(path string, mode Mode) ([]pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("itemdata: opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("itemdata: parsing %s: %w", path, err)
	}

	var rows []pair
	for i, record := range records {
		if len(record) < 2 {
			continue
		}
		row := pair{word: record[0], first: record[1]}
		if len(record) > 2 {
			row.second = record[2]
		}
		if mode == ModeDifferent && row.second == "" {
			return nil, fmt.Errorf("itemdata: %s line %d has no second image (required by mode %q)", path, i+1, mode)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Draw returns n items, one per round, tiered easy → ideal →
// difficult.
func (s *Source) Draw(n int) ([]Item, error) {
	if n <= 0 {
		return nil, fmt.Errorf("itemdata: draw count must be positive, got %d", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		tier := i
		if tier > len(s.tiers)-1 {
			tier = len(s.tiers) - 1
		}
		items = append(items, s.applyMode(s.nextPair(tier)))
	}
	return items, nil
}

// nextPair picks one row from the given tier: random with shuffle,
// otherwise sequentially with wraparound. Must be called with s.mu
// held.
func (s *Source) nextPair(tier int) pair {
	rows := s.tiers[tier]
	if s.shuffle {
		return rows[s.rng.Intn(len(rows))]
	}
	row := rows[s.cursors[tier]%len(rows)]
	s.cursors[tier]++
	return row
}

// applyMode maps a raw row to per-player images. Must be called with
// s.mu held: one_blind alternation is shared state.
func (s *Source) applyMode(row pair) Item {
	item := Item{Word: row.word}
	switch s.mode {
	case ModeSame:
		item.Images = [2]string{row.first, row.first}
	case ModeDifferent:
		item.Images = [2]string{row.first, row.second}
	case ModeOneBlind:
		if s.blindSwap {
			item.Images = [2]string{"", row.first}
		} else {
			item.Images = [2]string{row.first, ""}
		}
		s.blindSwap = !s.blindSwap
	}
	return item
}
