// Package memento runs batches of expensive computations ("experiments")
// defined by combinatorial parameter matrices, and memoizes every result so
// repeated runs skip completed work.
//
// An experiment is a function plus a stable name. A matrix declares the
// parameters to sweep; expanding it yields one configuration per point of
// the cartesian product, minus explicit exclusions. Run executes a matrix
// through a bounded worker pool, serving configurations that already have a
// cached result straight from the store, and returns one Result per
// configuration in expansion order. Long-running tasks can persist
// intermediate state through their Context and resume after an interrupted
// batch.
//
// Multiple matrices can be linked by data dependencies: RunAll executes
// them in topological order and fans each matrix's results out into its
// dependents as a fresh expansion dimension.
//
// Results live in a SQLite file by default, so they survive across
// processes; the store is pluggable for tests and for shared backends.
package memento
