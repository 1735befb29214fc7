// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the pipeline, inspecting
// the metadata cache, browsing run history, and configuration
// scaffolding. Keep this package lean: add new functionality to the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
