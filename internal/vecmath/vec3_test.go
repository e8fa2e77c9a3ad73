package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSub(t *testing.T) {
	a := New(1, 2, 3)
	b := New(0.5, -1, 2)

	assert.Equal(t, New(1.5, 1, 5), a.Add(b))
	assert.Equal(t, New(0.5, 3, 1), a.Sub(b))
	assert.Equal(t, a, a.Add(b).Sub(b))
}

func TestScaleAddScaled(t *testing.T) {
	a := New(2, -3, 4)
	assert.Equal(t, New(4, -6, 8), a.Scale(2))
	assert.Equal(t, a.Add(a.Scale(3)), a.AddScaled(a, 3))
}

func TestDotCross(t *testing.T) {
	x := New(1, 0, 0)
	y := New(0, 1, 0)

	assert.Equal(t, 0.0, x.Dot(y))
	assert.Equal(t, New(0, 0, 1), x.Cross(y))
	assert.Equal(t, 1.0, x.Dot(x))
}

func TestLenSqLen(t *testing.T) {
	v := New(3, 4, 0)
	assert.Equal(t, 25.0, v.LenSq())
	assert.Equal(t, 5.0, v.Len())
	assert.True(t, math.Abs(v.Len()*v.Len()-v.LenSq()) < 1e-12)
}

func TestIsZero(t *testing.T) {
	assert.True(t, New(0, 0, 0).IsZero())
	assert.False(t, New(1e-300, 0, 0).IsZero())
}
