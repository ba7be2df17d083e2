// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval core lives here: SemanticIndex wraps an embedder and a
// vector index, IndexCache memoises built indexes across two tiers,
// and Aggregator picks the best corpus for a query.
package services
