package memento

import (
	"errors"
	"fmt"

	"github.com/sweeplab/memento/matrix"
	"github.com/sweeplab/memento/store"
)

// ErrCyclicDependency reports that the registered matrices do not form a
// directed acyclic graph. RunAll fails with it before any task executes.
var ErrCyclicDependency = errors.New("cyclic dependency between matrices")

// CacheMissError is returned by force-cache runs when a configuration has
// no stored result. It wraps store.ErrCacheMiss.
type CacheMissError struct {
	Config *matrix.Config
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("no cached result for configuration %s", e.Config)
}

func (e *CacheMissError) Unwrap() error {
	return store.ErrCacheMiss
}
