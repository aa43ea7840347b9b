package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	require.NoError(t, g.AddNode("a"))
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	err := g.AddNode("a")
	assert.ErrorContains(t, err, "node already exists")
	assert.Len(t, g.nodes, 1)

	require.NoError(t, g.AddNode("b"))
	assert.Len(t, g.nodes, 2)
	_, ok = g.nodes["b"]
	assert.True(t, ok)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))

		err := g.AddEdge("a", "b") // b depends on a
		require.NoError(t, err)

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]

		assert.Contains(t, nodeA.dependents, "b")
		assert.Equal(t, nodeB, nodeA.dependents["b"])
		assert.Contains(t, nodeB.deps, "a")
		assert.Equal(t, nodeA, nodeB.deps["a"])
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddNode("c"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddNode("c"))
		require.NoError(t, g.AddNode("d"))
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a")) // Cycle
		err := g.DetectCycles()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddNode("c"))
		require.NoError(t, g.AddNode("d"))
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "d"))
		require.NoError(t, g.AddEdge("d", "a")) // Cycle back to the start
		err := g.DetectCycles()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		// Component 1 (valid)
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddEdge("a", "b"))

		// Component 2 (has a cycle)
		require.NoError(t, g.AddNode("x"))
		require.NoError(t, g.AddNode("y"))
		require.NoError(t, g.AddNode("z"))
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y")) // Cycle

		err := g.DetectCycles()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
	})
}

func TestDependenciesAndDependents(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode("a"))
	require.NoError(t, g.AddNode("b"))
	require.NoError(t, g.AddNode("c"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "c"))

	deps, err := g.Dependencies("c")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, deps)

	dependents, err := g.Dependents("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, dependents)

	_, err = g.Dependencies("dne")
	assert.ErrorContains(t, err, "node not found")
	_, err = g.Dependents("dne")
	assert.ErrorContains(t, err, "node not found")
}

func TestTopoSort(t *testing.T) {
	t.Run("dependencies come first", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("train"))
		require.NoError(t, g.AddNode("prepare"))
		require.NoError(t, g.AddNode("evaluate"))
		require.NoError(t, g.AddEdge("prepare", "train"))
		require.NoError(t, g.AddEdge("train", "evaluate"))

		sorted, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"prepare", "train", "evaluate"}, sorted)
	})

	t.Run("ties break by insertion order", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddNode("c"))
		require.NoError(t, g.AddEdge("a", "b"))

		// b becomes ready only after a, but c was inserted after b and must
		// not jump ahead of it once both are eligible.
		sorted, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, sorted)
	})

	t.Run("diamond keeps a stable order", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("root"))
		require.NoError(t, g.AddNode("left"))
		require.NoError(t, g.AddNode("right"))
		require.NoError(t, g.AddNode("sink"))
		require.NoError(t, g.AddEdge("root", "left"))
		require.NoError(t, g.AddEdge("root", "right"))
		require.NoError(t, g.AddEdge("left", "sink"))
		require.NoError(t, g.AddEdge("right", "sink"))

		for i := 0; i < 10; i++ {
			sorted, err := g.TopoSort()
			require.NoError(t, err)
			assert.Equal(t, []string{"root", "left", "right", "sink"}, sorted)
		}
	})

	t.Run("cycle is reported", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode("a"))
		require.NoError(t, g.AddNode("b"))
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.TopoSort()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
	})
}
