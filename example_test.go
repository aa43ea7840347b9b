package memento_test

import (
	"context"
	"fmt"
	"log"

	"github.com/sweeplab/memento"
	"github.com/sweeplab/memento/matrix"
	"github.com/sweeplab/memento/store"
)

func Example() {
	squares := memento.New("squares",
		func(ctx *memento.Context, cfg *matrix.Config) (any, error) {
			x, err := cfg.GetInt("x")
			if err != nil {
				return nil, err
			}
			return x * x, nil
		},
		memento.WithCacheStore(store.NewMemoryStore()),
		memento.WithCheckpointStore(store.NewMemoryStore()),
	)

	results, err := squares.Run(context.Background(), matrix.Matrix{
		Parameters: []matrix.Param{matrix.P("x", 1, 2, 3)},
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		n, _ := r.Inner.AsInt()
		fmt.Println(n, r.WasCached)
	}
	// Output:
	// 1 false
	// 4 false
	// 9 false
}

func ExampleMemento_RunAll() {
	paramEcho := func(ctx *memento.Context, cfg *matrix.Config) (any, error) {
		out := make(map[string]any, cfg.Len())
		for _, name := range cfg.Names() {
			v, _ := cfg.Value(name)
			native, err := v.Native()
			if err != nil {
				return nil, err
			}
			out[name] = native
		}
		return out, nil
	}

	sweep := memento.New("sweep", paramEcho,
		memento.WithCacheStore(store.NewMemoryStore()),
		memento.WithCheckpointStore(store.NewMemoryStore()),
	)

	sweep.AddMatrix(matrix.Matrix{
		ID:         "train",
		Parameters: []matrix.Param{matrix.P("lr", 0.1, 0.01)},
	})
	sweep.AddMatrix(matrix.Matrix{
		ID:           "evaluate",
		Dependencies: []string{"train"},
		Parameters:   []matrix.Param{matrix.P("split", "test")},
	})

	results, err := sweep.RunAll(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(results["train"]), len(results["evaluate"]))
	// Output:
	// 2 2
}
