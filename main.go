// Package main is the entry point for the Aural music player.
//
// Aural is a local audio player and library manager with clean
// architecture:
// - Event-driven communication (no callbacks)
// - Dependency injection for testability
// - Repository pattern for data persistence
//
// Build:
//
//	go build -o build/aural .
//
// Run:
//
//	./build/aural
package main

import (
	"github.com/joho/godotenv"

	"github.com/auralplayer/aural/cmd"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cmd.Execute()
}
