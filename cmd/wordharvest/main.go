// Package main provides the entry point for the wordharvest CLI.
//
// wordharvest discovers search keywords by recursively expanding seed
// phrases through a suggestion API, with local quota enforcement,
// response caching, and resumable sessions.
//
// Usage:
//
//	wordharvest harvest "пластиковые окна"
//	wordharvest harvest --seed-file seeds.txt --depth 3
//	wordharvest resume
//
// See --help for all available options.
package main

// main is the entry point for wordharvest.
func main() {
	Execute()
}
