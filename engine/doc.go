// Package engine runs batches of prioritized tasks on a bounded worker
// pool.
//
// Tasks queue on a min-heap ordered by priority, with submission order
// breaking ties, so a batch drains deterministically for a given worker
// count. Results come back in submission order regardless of which
// worker finished first. When any task fails, the whole batch reports a
// single AggregateError listing every failure; successful siblings are
// dropped from the in-process return.
package engine
