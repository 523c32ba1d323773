package math3d

import (
	"testing"

	"github.com/chewxy/math32"
)

const tolerance = 1e-4

func near(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func assertNear(t *testing.T, name string, got, want, eps float32) {
	t.Helper()
	if !near(got, want, eps) {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}

func assertV3(t *testing.T, name string, got, want Vector3d, eps float32) {
	t.Helper()
	if !near(got.X, want.X, eps) || !near(got.Y, want.Y, eps) || !near(got.Z, want.Z, eps) {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}

func assertMatrix[S Shape](t *testing.T, name string, got, want Matrix[S], eps float32) {
	t.Helper()
	g, w := got.Values(), want.Values()
	for i := range g {
		if !near(g[i], w[i], eps) {
			t.Errorf("%s element %d = %v, want %v\ngot:\n%v\nwant:\n%v", name, i, g[i], w[i], got, want)
			return
		}
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}
