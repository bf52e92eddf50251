// Package engine implements the discovery scheduler, the core of the
// keyword harvester.
//
// The scheduler maintains a breadth-first frontier of (phrase, depth)
// tasks, dispatches them to a bounded worker pool, gates every outbound
// call through the rate limiter and the response cache, filters the
// returned phrases, merges survivors into a session-wide keyword map,
// and enqueues the highest-volume children for the next depth.
//
// Concurrency model: the driving loop is single-threaded. Workers only
// fetch; every mutation of shared session state happens in the driving
// loop when a worker's result is collected. A worker therefore blocks
// only inside the rate limiter and the HTTP call, never on session
// state.
//
// Dedup invariant: at most one fetch is ever issued per distinct
// (phrase, depth) pair, regardless of how many parents discover the
// phrase or how a checkpoint is restored.
package engine
