// Package matrix declares parameter matrices and expands them into the
// concrete configurations an experiment batch will run.
//
// A Matrix lists its parameters in declaration order; Expand produces the
// cartesian product of their values with the last parameter varying
// fastest, drops every combination matched by an exclusion predicate, and
// attaches the shared settings to each resulting Config. Matrices can be
// declared in Go, or loaded from HCL and YAML sweep files with LoadHCL and
// LoadYAML.
package matrix
