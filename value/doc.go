// Package value defines the serializable value algebra shared by parameter
// matrices, experiment results and the content-addressed store.
//
// A Value is a tagged union over null, bool, number, string, tuple and
// object: exactly the shapes JSON can carry. Collection types are
// normalized on construction (lists and sets become tuples, maps become
// objects), so a Value survives a JSON round trip with both its type and
// its contents intact. That stability is what makes cache keys derived
// from values reproducible across processes.
//
// Behavior never travels inside a Value. Anything that is not plain data
// (a model constructor, a dataset loader, an objective) is referenced by a
// registered name and resolved by the caller, see package registry.
package value
