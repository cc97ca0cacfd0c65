// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

// Package botfilter identifies bot and headless-browser user agents so the
// collect endpoint can suppress them with a quiet 204 instead of persisting.
package botfilter

import "strings"

// automaton is an Aho-Corasick matcher over lowercased signatures. It finds
// any signature occurrence in O(n + m) rather than O(n * signatures), which
// matters because every accepted beacon passes through it.
//
// The automaton is built once at construction and immutable afterwards, so
// concurrent searches need no locking.
type automaton struct {
	root     *node
	patterns []string
}

type node struct {
	children map[rune]*node
	failure  *node
	output   []int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// newAutomaton builds the matcher from the given patterns. Patterns are
// lowercased; empty patterns are dropped.
func newAutomaton(patterns []string) *automaton {
	a := &automaton{root: newNode()}

	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		a.insert(p)
	}
	a.buildFailureLinks()
	return a
}

func (a *automaton) insert(pattern string) {
	n := a.root
	for _, ch := range pattern {
		if n.children[ch] == nil {
			n.children[ch] = newNode()
		}
		n = n.children[ch]
	}
	a.patterns = append(a.patterns, pattern)
	n.output = append(n.output, len(a.patterns)-1)
}

// buildFailureLinks wires each node to its longest proper suffix via BFS.
func (a *automaton) buildFailureLinks() {
	queue := make([]*node, 0, len(a.root.children))
	for _, child := range a.root.children {
		child.failure = a.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = a.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// firstMatch returns the first signature found in text, lowercased
// internally so matching is case-insensitive.
func (a *automaton) firstMatch(text string) (string, bool) {
	if len(a.patterns) == 0 {
		return "", false
	}

	n := a.root
	for _, ch := range strings.ToLower(text) {
		for n != nil && n.children[ch] == nil {
			n = n.failure
		}
		if n == nil {
			n = a.root
			continue
		}
		n = n.children[ch]

		if len(n.output) > 0 {
			return a.patterns[n.output[0]], true
		}
	}
	return "", false
}
