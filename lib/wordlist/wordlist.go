// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Package wordlist provides the dictionary membership test for guess
// validation. A List is an immutable set of accepted words; lookups
// are safe for concurrent use.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// List is a set of accepted dictionary words. Membership is exact:
// no case folding or normalization is applied, matching what the
// game's client layer submits.
type List struct {
	words map[string]struct{}
}

// Load reads a word list from a file with one word per line. Blank
// lines are skipped; surrounding whitespace is trimmed.
func Load(path string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist: opening %s: %w", path, err)
	}
	defer file.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wordlist: reading %s: %w", path, err)
	}
	return &List{words: words}, nil
}

// FromWords builds a List from the given words. Intended for tests.
func FromWords(words ...string) *List {
	list := &List{words: make(map[string]struct{}, len(words))}
	for _, word := range words {
		list.words[word] = struct{}{}
	}
	return list
}

// Contains reports whether word is in the list.
func (l *List) Contains(word string) bool {
	_, ok := l.words[word]
	return ok
}

// Len returns the number of words in the list.
func (l *List) Len() int { return len(l.words) }
