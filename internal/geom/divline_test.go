package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointOnDivlineSide(t *testing.T) {
	east := &Divline{Dx: FromInt(100)}
	north := &Divline{Dy: FromInt(100)}
	diag := &Divline{Dx: FromInt(100), Dy: FromInt(100)}

	tests := []struct {
		name string
		line *Divline
		x, y int
		want int
	}{
		{"east line, point below", east, 10, -5, 0},
		{"east line, point above", east, 10, 5, 1},
		{"north line, point right", north, 5, 10, 0},
		{"north line, point left", north, -5, 10, 1},
		{"diagonal, point right", diag, 50, 10, 0},
		{"diagonal, point left", diag, 10, 50, 1},
		{"diagonal, point on line", diag, 30, 30, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointOnDivlineSide(FromInt(tt.x), FromInt(tt.y), tt.line))
		})
	}
}

func TestInterceptVector(t *testing.T) {
	trace := &Divline{Dx: FromInt(500)}
	wall := &Divline{X: FromInt(250), Y: FromInt(-64), Dy: FromInt(320)}
	assert.Equal(t, FracUnit/2, InterceptVector(trace, wall))

	quarter := &Divline{X: FromInt(125), Y: FromInt(50), Dy: FromInt(-100)}
	assert.Equal(t, FracUnit/4, InterceptVector(trace, quarter))

	behind := &Divline{X: FromInt(-100), Y: FromInt(-1), Dy: FromInt(2)}
	assert.Less(t, InterceptVector(trace, behind), Fixed(0))
}

func TestInterceptVectorParallel(t *testing.T) {
	a := &Divline{Dx: FromInt(10), Dy: FromInt(10)}
	b := &Divline{X: FromInt(5), Dx: FromInt(20), Dy: FromInt(20)}
	assert.Equal(t, Fixed(0), InterceptVector(a, b))
}
