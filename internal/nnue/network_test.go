package nnue

import (
	"bytes"
	"testing"
)

// newTestNetwork builds a reduced network with deterministic parameters.
// Transformer values are kept even so the on-disk halved scale round
// trips exactly.
func newTestNetwork(halfDims, inputDims int) *Network {
	net := newNetworkDims(halfDims, inputDims)

	ft := net.FeatureTransformer
	for i := range ft.Biases {
		ft.Biases[i] = int16(i%120) * 2
	}
	for i := range ft.Weights {
		ft.Weights[i] = int16((i*7)%200-100) * 2
	}
	for i := range ft.PSQTWeights {
		ft.PSQTWeights[i] = int32((i*3)%500 - 250)
	}

	for s, stack := range net.LayerStacks {
		fillAffine(stack.FC0.Biases, stack.FC0.Weights, s)
		fillAffine(stack.FC1.Biases, stack.FC1.Weights, s+1)
		fillAffine(stack.FC2.Biases, stack.FC2.Weights, s+2)
	}
	return net
}

func fillAffine(biases []int32, weights []int8, seed int) {
	for i := range biases {
		biases[i] = int32((i+seed)*37 - 64)
	}
	for i := range weights {
		weights[i] = int8((i*11+seed)%120 - 60)
	}
}

func TestNetworkSaveLoadRoundTrip(t *testing.T) {
	net := newTestNetwork(64, 1260)

	var buf bytes.Buffer
	if err := net.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	reloaded := newNetworkDims(64, 1260)
	if err := reloaded.ReadFrom(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("read: %v", err)
	}

	ft, rft := net.FeatureTransformer, reloaded.FeatureTransformer
	for i := range ft.Biases {
		if rft.Biases[i] != ft.Biases[i] {
			t.Fatalf("transformer bias %d differs after round trip", i)
		}
	}
	for i := range ft.Weights {
		if rft.Weights[i] != ft.Weights[i] {
			t.Fatalf("transformer weight %d differs after round trip", i)
		}
	}
	for i := range ft.PSQTWeights {
		if rft.PSQTWeights[i] != ft.PSQTWeights[i] {
			t.Fatalf("PSQT weight %d differs after round trip", i)
		}
	}

	for s := range net.LayerStacks {
		a, b := net.LayerStacks[s], reloaded.LayerStacks[s]
		for i := range a.FC0.Weights {
			if a.FC0.Weights[i] != b.FC0.Weights[i] {
				t.Fatalf("stack %d FC0 weight %d differs", s, i)
			}
		}
		for i := range a.FC1.Weights {
			if a.FC1.Weights[i] != b.FC1.Weights[i] {
				t.Fatalf("stack %d FC1 weight %d differs", s, i)
			}
		}
		for i := range a.FC2.Weights {
			if a.FC2.Weights[i] != b.FC2.Weights[i] {
				t.Fatalf("stack %d FC2 weight %d differs", s, i)
			}
		}
	}

	if reloaded.NetDescription != net.NetDescription {
		t.Errorf("description %q differs from %q", reloaded.NetDescription, net.NetDescription)
	}
}

func TestNetworkEvaluationSurvivesRoundTrip(t *testing.T) {
	net := newTestNetwork(64, 1260)

	var accumulation [2][]int16
	var psqtAccumulation [2][]int32
	for p := 0; p < 2; p++ {
		accumulation[p] = make([]int16, 64)
		psqtAccumulation[p] = make([]int32, PSQTBuckets)
		for i := range accumulation[p] {
			accumulation[p][i] = int16((i*19+p*7)%400 - 100)
		}
		for b := range psqtAccumulation[p] {
			psqtAccumulation[p][b] = int32(b*1000 - p*3000)
		}
	}

	psqtBefore, posBefore := net.Evaluate(accumulation, psqtAccumulation, 0, 20)

	var buf bytes.Buffer
	if err := net.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloaded := newNetworkDims(64, 1260)
	if err := reloaded.ReadFrom(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("read: %v", err)
	}

	psqtAfter, posAfter := reloaded.Evaluate(accumulation, psqtAccumulation, 0, 20)
	if psqtBefore != psqtAfter || posBefore != posAfter {
		t.Errorf("evaluation differs after round trip: (%d, %d) vs (%d, %d)",
			psqtBefore, posBefore, psqtAfter, posAfter)
	}
}

func TestNetworkRejectsBadData(t *testing.T) {
	net := newTestNetwork(64, 1260)
	var buf bytes.Buffer
	if err := net.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	good := buf.Bytes()

	t.Run("bad version", func(t *testing.T) {
		data := append([]byte(nil), good...)
		data[0] ^= 0xFF
		if err := newNetworkDims(64, 1260).ReadFrom(bytes.NewReader(data)); err == nil {
			t.Error("expected error for corrupted version")
		}
	})

	t.Run("bad hash", func(t *testing.T) {
		data := append([]byte(nil), good...)
		data[4] ^= 0xFF
		if err := newNetworkDims(64, 1260).ReadFrom(bytes.NewReader(data)); err == nil {
			t.Error("expected error for corrupted hash")
		}
	})

	t.Run("truncated", func(t *testing.T) {
		data := good[:len(good)/2]
		if err := newNetworkDims(64, 1260).ReadFrom(bytes.NewReader(data)); err == nil {
			t.Error("expected error for truncated stream")
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		if err := newNetworkDims(32, 1260).ReadFrom(bytes.NewReader(good)); err == nil {
			t.Error("expected hash mismatch for different dimensions")
		}
	})
}

func TestMaterialBucket(t *testing.T) {
	cases := []struct{ pieces, want int }{
		{1, 0},
		{4, 0},
		{5, 1},
		{17, 4},
		{32, 7},
		{0, 0},
	}
	for _, tc := range cases {
		if got := materialBucket(tc.pieces); got != tc.want {
			t.Errorf("materialBucket(%d) = %d, want %d", tc.pieces, got, tc.want)
		}
	}
}
