package model

import "fmt"

// Task is a single fetch unit in the discovery frontier.
// A task is created when a seed is added or when recursive expansion
// enqueues a child phrase. It is consumed exactly once by a worker and
// never mutated after creation.
type Task struct {
	// Phrase is the normalized phrase to query.
	Phrase string `json:"phrase"`

	// Depth is the BFS depth of this task, starting at 1 for seeds.
	Depth int `json:"depth"`

	// Seed is the root phrase this task ultimately descends from.
	// For seed tasks, Seed equals Phrase.
	Seed string `json:"seed"`

	// Source is the parent phrase that discovered this task.
	// Empty for seed tasks.
	Source string `json:"source,omitempty"`
}

// Key returns the task's dedup identity.
//
// Design decision: Identity is (phrase, depth) rather than phrase alone
// because the same phrase discovered at a different depth represents a
// different expansion opportunity. Using both bounds total work to one
// fetch per distinct pair regardless of how many parents discover it.
func (t Task) Key() string {
	return TaskKey(t.Phrase, t.Depth)
}

// TaskKey builds the dedup identity key for a (phrase, depth) pair.
func TaskKey(phrase string, depth int) string {
	return fmt.Sprintf("%s|%d", phrase, depth)
}
