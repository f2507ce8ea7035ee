// Package core contains the business logic of the deck thumbnail cache.
// It is framework-agnostic and can be used independently of any storage
// substrate or transport.
//
// The core package is organized into several sub-packages:
//
// - domain: deck detail, summaries and the cached info model
// - fingerprint: content hashing of deck composition
// - cachestore: the three persisted records (info, thumbnails, list order)
// - staleness: decides whether a deck needs a new thumbnail
// - ordering: relative list position tracking between passes
// - scheduler: two-phase background refresh passes
// - workers: serializes passes through a bounded queue
// - errors: custom error types for better error handling
// - interfaces: contracts for substrates, upstream collaborators and logging
//
// # Design Principles
//
// - No framework dependencies in the engine
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation with fake clocks and collaborators
//
// # Usage Example
//
//	import (
//	    "deckthumb-cache/core/cachestore"
//	    "deckthumb-cache/core/scheduler"
//	)
//
//	store := cachestore.NewStore(myCache) // implements interfaces.Cache
//	store.Load(ctx)
//
//	sched := scheduler.New(store, myFetcher, myGenerator,
//	    scheduler.WithLogger(myLogger),
//	)
//
//	res, err := sched.Run(ctx, scheduler.PassRequest{
//	    Decks:       decks,
//	    CommitOrder: true,
//	})
package core
