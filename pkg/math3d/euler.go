package math3d

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// EulerOrder selects the axis sequence used to build or decompose a
// rotation. Matrices compose as M = R(first) * R(second) * R(third).
type EulerOrder int

const (
	EulerXYX EulerOrder = iota
	EulerXYZ
	EulerXZX
	EulerXZY
	EulerYXY
	EulerYXZ
	EulerYZX
	EulerYZY
	EulerZXY
	EulerZXZ
	EulerZYX
	EulerZYZ
)

// LegacyEulerOrder is the order older engine code assumes when none is given.
const LegacyEulerOrder = EulerZXY

type eulerAxes struct {
	first, second, third int
}

var eulerTable = [...]eulerAxes{
	EulerXYX: {0, 1, 0},
	EulerXYZ: {0, 1, 2},
	EulerXZX: {0, 2, 0},
	EulerXZY: {0, 2, 1},
	EulerYXY: {1, 0, 1},
	EulerYXZ: {1, 0, 2},
	EulerYZX: {1, 2, 0},
	EulerYZY: {1, 2, 1},
	EulerZXY: {2, 0, 1},
	EulerZXZ: {2, 0, 2},
	EulerZYX: {2, 1, 0},
	EulerZYZ: {2, 1, 2},
}

func (o EulerOrder) axes() eulerAxes {
	if o < 0 || int(o) >= len(eulerTable) {
		panic(fmt.Sprintf("math3d: invalid Euler order %d", int(o)))
	}
	return eulerTable[o]
}

// Valid reports whether o is one of the twelve orders.
func (o EulerOrder) Valid() bool {
	return o >= 0 && int(o) < len(eulerTable)
}

// Axes returns the axis indices (0=X, 1=Y, 2=Z) in application order.
func (o EulerOrder) Axes() (first, second, third int) {
	a := o.axes()
	return a.first, a.second, a.third
}

func (o EulerOrder) String() string {
	if !o.Valid() {
		return fmt.Sprintf("EulerOrder(%d)", int(o))
	}
	a := o.axes()
	return string([]byte{"XYZ"[a.first], "XYZ"[a.second], "XYZ"[a.third]})
}

// ParseEulerOrder maps names such as "ZXY" (case-insensitive) to an order.
func ParseEulerOrder(s string) (EulerOrder, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for o := range EulerOrder(len(eulerTable)) {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown Euler order %q", s)
}

// parity is +1 when (i, j, k) is a cyclic permutation of (X, Y, Z).
func parity(i, j int) float32 {
	if (j-i+3)%3 == 1 {
		return 1
	}
	return -1
}

// eulerFromRotation decomposes the 3x3 rotation block of a square matrix.
//
// Tait-Bryan orders (i, j, k) read sin(second) from element (i, k); proper
// orders (i, j, i) read cos(second) from (i, i). When that element reaches
// +-1 the first and third axes coincide; the third angle is then forced
// to zero and the first absorbs the whole rotation.
func eulerFromRotation[S Shape](m *Matrix[S], order EulerOrder) (first, second, third Angle) {
	a := order.axes()
	at := func(r, c int) float32 { return m.Value(r, c) }

	var f, s, t float32
	if a.first != a.third {
		i, j, k := a.first, a.second, a.third
		sigma := parity(i, j)
		v := sigma * at(i, k)
		if v < 1 {
			if v > -1 {
				f = math32.Atan2(-sigma*at(j, k), at(k, k))
				s = math32.Asin(v)
				t = math32.Atan2(-sigma*at(i, j), at(i, i))
			} else {
				f = -math32.Atan2(at(j, i), at(j, j))
				s = -math32.Pi / 2
				t = 0
			}
		} else {
			f = math32.Atan2(at(j, i), at(j, j))
			s = math32.Pi / 2
			t = 0
		}
	} else {
		i, j := a.first, a.second
		k := 3 - i - j
		sigma := parity(i, j)
		v := at(i, i)
		if v < 1 {
			if v > -1 {
				f = math32.Atan2(at(j, i), -sigma*at(k, i))
				s = math32.Acos(v)
				t = math32.Atan2(at(i, j), sigma*at(i, k))
			} else {
				f = -math32.Atan2(-sigma*at(j, k), at(j, j))
				s = math32.Pi
				t = 0
			}
		} else {
			f = math32.Atan2(-sigma*at(j, k), at(j, j))
			s = 0
			t = 0
		}
	}
	return Radians(f), Radians(s), Radians(t)
}
