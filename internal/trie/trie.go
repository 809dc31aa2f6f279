// Package trie stores path prefixes, split into segments, and matches
// paths against them.
package trie

import (
	"path/filepath"
	"strings"
)

// NodeIndex is the position of a node in the arena.
type NodeIndex int

type node struct {
	children map[string]NodeIndex
	isEnd    bool
}

// Trie keeps its nodes in a single slice and links them by index.
type Trie struct {
	nodes []node
	size  int
}

// New returns a trie holding only the root.
func New() *Trie {
	return &Trie{nodes: []node{{children: make(map[string]NodeIndex)}}}
}

// Insert adds a segment sequence.
func (t *Trie) Insert(sequence []string) {
	cur := NodeIndex(0)
	for _, part := range sequence {
		next, ok := t.nodes[cur].children[part]
		if !ok {
			next = NodeIndex(len(t.nodes))
			t.nodes = append(t.nodes, node{children: make(map[string]NodeIndex)})
			t.nodes[cur].children[part] = next
		}
		cur = next
	}
	if !t.nodes[cur].isEnd {
		t.nodes[cur].isEnd = true
		t.size++
	}
}

// HasPrefix reports whether an inserted sequence is a prefix of sequence.
// The empty sequence, once inserted, matches everything.
func (t *Trie) HasPrefix(sequence []string) bool {
	cur := NodeIndex(0)
	if t.nodes[cur].isEnd {
		return true
	}
	for _, part := range sequence {
		next, ok := t.nodes[cur].children[part]
		if !ok {
			return false
		}
		if t.nodes[next].isEnd {
			return true
		}
		cur = next
	}
	return false
}

// Len returns the number of distinct sequences inserted.
func (t *Trie) Len() int {
	return t.size
}

// Split turns a file path into clean segments.
func Split(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." {
		return nil
	}
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// InsertPath adds path as a prefix.
func (t *Trie) InsertPath(path string) {
	t.Insert(Split(path))
}

// MatchPath reports whether path lies under an inserted path.
func (t *Trie) MatchPath(path string) bool {
	return t.HasPrefix(Split(path))
}
