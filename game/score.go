// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

// pointTable maps the number of guesses remaining at the winning
// submission to the points awarded for the round.
var pointTable = map[int]int{
	6: 100,
	5: 50,
	4: 25,
	3: 10,
	2: 5,
	1: 1,
}

// Points returns the score for a round won with the given number of
// guesses remaining. Lost rounds, timeouts, and out-of-table remaining
// counts award 0.
func Points(remaining int) int {
	return pointTable[remaining]
}
