package gan_mnist

import (
	"math"
	"math/rand"
	"testing"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestNormalInitIsReproducible(t *testing.T) {
	a := NormalInit(rand.New(rand.NewSource(3)), 0, 0.02)(tensor.Float64, 5, 4).([]float64)
	b := NormalInit(rand.New(rand.NewSource(3)), 0, 0.02)(tensor.Float64, 5, 4).([]float64)
	if len(a) != 20 {
		t.Fatalf("expected 20 values, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("value #%d differs: %f != %f", i, a[i], b[i])
		}
	}
}

func TestGlorotUniformInitLimit(t *testing.T) {
	fanOut, fanIn := 30, 70
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	values := GlorotUniformInit(rand.New(rand.NewSource(4)))(tensor.Float64, fanOut, fanIn).([]float64)
	if len(values) != fanIn*fanOut {
		t.Fatalf("expected %d values, got %d", fanIn*fanOut, len(values))
	}
	for i, v := range values {
		if math.Abs(v) > limit {
			t.Fatalf("value #%d (%f) exceeds limit %f", i, v, limit)
		}
	}
	float32Values := GlorotUniformInit(rand.New(rand.NewSource(4)))(tensor.Float32, 2, 2).([]float32)
	if len(float32Values) != 4 {
		t.Fatalf("expected 4 values, got %d", len(float32Values))
	}
}

func TestNetworkShareAndSync(t *testing.T) {
	cfg := testConfig(t)
	rng := rand.New(rand.NewSource(5))
	g := gorgonia.NewGraph()
	dis := DefineDiscriminator(g, cfg, rng)

	other := gorgonia.NewGraph()
	shared, err := dis.Share(other, "copy", true)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if len(shared.Learnables()) != len(dis.Learnables()) {
		t.Fatalf("expected %d learnables, got %d", len(dis.Learnables()), len(shared.Learnables()))
	}
	for i, n := range shared.Learnables() {
		if n.Graph() != other {
			t.Fatalf("learnable #%d is not on target graph", i)
		}
		if n.Name() != dis.Learnables()[i].Name()+"_copy" {
			t.Fatalf("unexpected name of learnable #%d: %s", i, n.Name())
		}
	}
	if !sameValues(snapshot(t, dis.Learnables()), snapshot(t, shared.Learnables())) {
		t.Fatal("shared values differ from original")
	}

	// Detach first weight of the copy, then sync it back
	detached := tensor.New(tensor.WithShape(shared.Learnables()[0].Shape()...), tensor.Of(tensor.Float64))
	if err = gorgonia.Let(shared.Learnables()[0], detached); err != nil {
		t.Fatalf("Let: %v", err)
	}
	if sameValues(snapshot(t, dis.Learnables()), snapshot(t, shared.Learnables())) {
		t.Fatal("detached value must differ before sync")
	}
	if err = syncLearnables(shared.Learnables(), dis.Learnables()); err != nil {
		t.Fatalf("syncLearnables: %v", err)
	}
	if !sameValues(snapshot(t, dis.Learnables()), snapshot(t, shared.Learnables())) {
		t.Fatal("values differ after sync")
	}
	if err = syncLearnables(shared.Learnables()[:1], dis.Learnables()); err == nil {
		t.Fatal("expected error for mismatched number of learnables")
	}
}

func TestNetworkEvalSkipsDropout(t *testing.T) {
	cfg := testConfig(t)
	cfg.DropoutProb = 0.5
	rng := rand.New(rand.NewSource(6))
	batch := 3
	images := uniformDense(rng, batch, cfg.ImageSize())

	train := gorgonia.NewGraph()
	dis := DefineDiscriminator(train, cfg, rng)
	input := gorgonia.NewMatrix(train, gorgonia.Float64, gorgonia.WithShape(batch, cfg.ImageSize()), gorgonia.WithName("input"))
	if err := dis.Fwd(input, batch); err != nil {
		t.Fatalf("Fwd: %v", err)
	}

	eval := gorgonia.NewGraph()
	disEval, err := dis.Share(eval, "eval", true)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	evalInput := gorgonia.NewMatrix(eval, gorgonia.Float64, gorgonia.WithShape(batch, cfg.ImageSize()), gorgonia.WithName("input"))
	if err = disEval.Fwd(evalInput, batch); err != nil {
		t.Fatalf("Fwd: %v", err)
	}
	// Same layers and input on both graphs: only dropout makes the difference
	if trainNodes, evalNodes := len(train.AllNodes()), len(eval.AllNodes()); trainNodes <= evalNodes {
		t.Fatalf("expected dropout nodes in training graph only: %d (train) vs %d (eval)", trainNodes, evalNodes)
	}
	if !disEval.Out().Shape().Eq(tensor.Shape{batch, 1}) {
		t.Fatalf("expected output shape (%d, 1), got %v", batch, disEval.Out().Shape())
	}

	trainFirst, trainSecond := runTwice(t, train, input, dis.Out(), images)
	if sameValues([][]float64{trainFirst}, [][]float64{trainSecond}) {
		t.Fatalf("expected different outputs with dropout enabled, got %v twice", trainFirst)
	}
	evalFirst, evalSecond := runTwice(t, eval, evalInput, disEval.Out(), images)
	if !sameValues([][]float64{evalFirst}, [][]float64{evalSecond}) {
		t.Fatalf("expected same outputs in evaluation mode, got %v and %v", evalFirst, evalSecond)
	}
}

// runTwice Evaluates graph g two times on the same input and returns copies of out's values
func runTwice(t *testing.T, g *gorgonia.ExprGraph, input, out *gorgonia.Node, value *tensor.Dense) ([]float64, []float64) {
	var outVal gorgonia.Value
	gorgonia.Read(out, &outVal)
	tm := gorgonia.NewTapeMachine(g)
	defer tm.Close()
	if err := gorgonia.Let(input, value); err != nil {
		t.Fatalf("Let: %v", err)
	}
	results := make([][]float64, 2)
	for i := range results {
		if err := tm.RunAll(); err != nil {
			t.Fatalf("RunAll: %v", err)
		}
		results[i] = append([]float64(nil), outVal.Data().([]float64)...)
		tm.Reset()
	}
	return results[0], results[1]
}
