package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleConnectionSigmoid(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 2, 1)
	in, out := g.InputIndices(), g.OutputIndices()
	g.AddConnection(ids, in[0], out[0], 1.0)
	g.BuildEvaluationOrder()

	g.SetInputs([]float64{1.0, 0.0})
	g.Evaluate()
	outputs := g.Outputs()

	require.Len(t, outputs, 1)
	assert.InDelta(t, 1/(1+math.Exp(-1)), outputs[0], 1e-12)
	assert.InDelta(t, 0.7311, outputs[0], 1e-4)
}

func TestNewGenomeShape(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 3, 2)

	assert.Equal(t, 3, g.NumInputs())
	assert.Equal(t, 2, g.NumOutputs())
	assert.Empty(t, g.Connections())
	assert.Zero(t, g.HiddenCount())
	assert.True(t, g.OrderCurrent())
	for _, n := range g.InputIndices() {
		assert.Equal(t, Layer{Kind: LayerInput}, g.Node(n).Layer)
	}
	for _, n := range g.OutputIndices() {
		assert.Equal(t, Layer{Kind: LayerOutput, Depth: 1}, g.Node(n).Layer)
	}
	// No connections: every output is activation(0).
	assert.Equal(t, []float64{0.5, 0.5}, g.Activate([]float64{1, 2, 3}))
}

func TestSetInputsRejectsWrongLength(t *testing.T) {
	g := NewGenome(NewIDAllocator(), 2, 1)
	assert.Panics(t, func() { g.SetInputs([]float64{1}) })
}

func TestEvaluateRequiresCurrentOrder(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 2, 1)
	g.AddConnection(ids, g.InputIndices()[0], g.OutputIndices()[0], 0.5)
	require.False(t, g.OrderCurrent())

	g.SetInputs([]float64{1, 1})
	assert.Panics(t, func() { g.Evaluate() })
	assert.Panics(t, func() { g.EvaluationOrder() })
}

func TestOutputsRequireEvaluation(t *testing.T) {
	g := NewGenome(NewIDAllocator(), 2, 1)
	assert.Panics(t, func() { g.Outputs() })
}

func TestParameterChangesInvalidateOutputs(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 1, 1)
	out := g.OutputIndices()[0]
	c := g.AddConnection(ids, g.InputIndices()[0], out, 1.0)
	g.BuildEvaluationOrder()

	assert.InDelta(t, 0.8808, g.Activate([]float64{2})[0], 1e-4)
	g.SetActivation(out, Identity)
	assert.Panics(t, func() { g.Outputs() })
	assert.Equal(t, []float64{2}, g.Activate([]float64{2}))

	g.SetWeight(c, 0.5)
	assert.Panics(t, func() { g.Outputs() })
	assert.Equal(t, []float64{1}, g.Activate([]float64{2}))
	assert.True(t, g.OrderCurrent())
}

func TestMutationsInvalidateOutputs(t *testing.T) {
	r := newTestReproduction(testConfig(t, nil), 5)
	ids := r.IDs
	g := NewGenome(ids, 1, 1)
	out := g.OutputIndices()[0]
	g.AddConnection(ids, g.InputIndices()[0], out, 1.0)
	g.BuildEvaluationOrder()

	g.Activate([]float64{1})
	r.mutateWeight(g)
	assert.Panics(t, func() { g.Outputs() })

	changed := 0
	for i := 0; i < 40; i++ {
		g.Activate([]float64{1})
		before := g.Node(out).Activation
		r.mutateActivation(g)
		if g.Node(out).Activation != before {
			changed++
			assert.Panics(t, func() { g.Outputs() })
		}
	}
	assert.Positive(t, changed)
}

func TestForeignIndexPanics(t *testing.T) {
	if !verifyInvariants {
		t.Skip("index tags are not checked in release builds")
	}
	ids := NewIDAllocator()
	a := NewGenome(ids, 2, 1)
	b := a.Clone()

	assert.Panics(t, func() { b.Node(a.OutputIndices()[0]) })
	assert.NotPanics(t, func() { b.Node(b.OutputIndices()[0]) })
}

func TestConnectionsAreListedOnTarget(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 2, 2)
	in, out := g.InputIndices(), g.OutputIndices()
	c1 := g.AddConnection(ids, in[0], out[1], 0.1)
	c2 := g.AddConnection(ids, in[1], out[1], 0.2)
	g.BuildEvaluationOrder()

	assert.Equal(t, []ConnIndex{c1, c2}, g.Node(out[1]).Incoming)
	assert.Empty(t, g.Node(out[0]).Incoming)
	assert.NoError(t, g.Verify())
}

func TestAddConnectionRejectsIllegalDirections(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 2, 1)
	in, out := g.InputIndices(), g.OutputIndices()
	assert.Panics(t, func() { g.AddConnection(ids, out[0], in[0], 1) })
	assert.Panics(t, func() { g.AddConnection(ids, in[0], in[1], 1) })
}

func TestCycleDetectionPanics(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 1, 1)
	in, out := g.InputIndices()[0], g.OutputIndices()[0]
	h1 := g.addNode(ids.NodeID(), Identity, Layer{Kind: LayerHidden, Depth: 1})
	h2 := g.addNode(ids.NodeID(), Identity, Layer{Kind: LayerHidden, Depth: 1})
	g.addConn(ids.ConnID(), in, h1, 1, true)
	g.addConn(ids.ConnID(), h1, h2, 1, true)
	g.addConn(ids.ConnID(), h2, h1, 1, true)
	g.addConn(ids.ConnID(), h2, out, 1, true)

	assert.Panics(t, func() { g.BuildEvaluationOrder() })
}

func TestLayersFollowLongestPath(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 2, 1)
	in, out := g.InputIndices(), g.OutputIndices()[0]
	h1 := g.addNode(ids.NodeID(), Identity, Layer{Kind: LayerHidden})
	h2 := g.addNode(ids.NodeID(), Identity, Layer{Kind: LayerHidden})
	orphan := g.addNode(ids.NodeID(), Identity, Layer{Kind: LayerHidden})
	g.addConn(ids.ConnID(), in[0], h1, 1, true)
	g.addConn(ids.ConnID(), h1, h2, 1, false) // disabled links still count for depth
	g.addConn(ids.ConnID(), in[1], h2, 1, true)
	g.addConn(ids.ConnID(), h2, out, 1, true)
	g.addConn(ids.ConnID(), orphan, out, 1, true)
	g.BuildEvaluationOrder()

	assert.Equal(t, Layer{Kind: LayerHidden, Depth: 1}, g.Node(h1).Layer)
	assert.Equal(t, Layer{Kind: LayerHidden, Depth: 2}, g.Node(h2).Layer)
	assert.Equal(t, LayerUnreachable, g.Node(orphan).Layer.Kind)
	assert.Equal(t, Layer{Kind: LayerOutput, Depth: 3}, g.Node(out).Layer)
	requireLayered(t, g)

	// h1 only feeds h2 through a disabled link, so it is not evaluated.
	for _, n := range g.EvaluationOrder() {
		assert.NotEqual(t, h1, n)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ids := NewIDAllocator()
	g := NewGenome(ids, 2, 1)
	c := g.AddConnection(ids, g.InputIndices()[0], g.OutputIndices()[0], 0.5)
	g.BuildEvaluationOrder()
	g.SetFitness(Fitness{Score: 3}, Stamp{Era: 1})

	clone := g.Clone()
	assert.Equal(t, g.ID, clone.ID)
	assert.Equal(t, g.Fitness, clone.Fitness)
	assert.True(t, clone.FitnessCurrent(Stamp{Era: 1}))
	assert.False(t, clone.FitnessCurrent(Stamp{Era: 2}))
	assert.NoError(t, clone.Verify())

	cc, ok := clone.ConnectionByID(g.Connection(c).ID)
	require.True(t, ok)
	clone.SetWeight(cc, -2)
	assert.Equal(t, 0.5, g.Connection(c).Weight)
}
