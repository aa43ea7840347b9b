// Package dag models the dependency relationships between experiment
// matrices as a Directed Acyclic Graph (DAG). It validates the graph
// (unknown nodes, self-references, cycles) and produces the deterministic
// dependencies-first order in which the scheduler runs the matrices.
package dag
