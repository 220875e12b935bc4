package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name string
		a, b Fixed
		mul  Fixed
		div  Fixed
	}{
		{"units", FromInt(3), FromInt(2), FromInt(6), FracUnit + FracUnit/2},
		{"negative", FromInt(-4), FromInt(2), FromInt(-8), FromInt(-2)},
		{"fraction", FracUnit / 2, FracUnit / 4, FracUnit / 8, FromInt(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.mul, Mul(tt.a, tt.b))
			assert.Equal(t, tt.div, Div(tt.a, tt.b))
		})
	}
}

func TestDivSaturates(t *testing.T) {
	assert.Equal(t, MaxFixed, Div(FromInt(30000), 1))
	assert.Equal(t, MinFixed, Div(FromInt(-30000), 1))
	assert.Equal(t, MinFixed, Div(FromInt(30000), -1))
	assert.Equal(t, MaxFixed, Div(FracUnit, 0))
}

func TestIntFloors(t *testing.T) {
	assert.Equal(t, 2, (FracUnit * 5 / 2).Int())
	assert.Equal(t, -3, (-FracUnit * 5 / 2).Int())
	assert.InDelta(t, -2.5, (-FracUnit * 5 / 2).Float(), 1e-9)
}

func TestAproxDistance(t *testing.T) {
	d := AproxDistance(FromInt(300), FromInt(-400))
	assert.InDelta(t, 500.0, d.Float(), 500*0.12)
	assert.Equal(t, FromInt(10), AproxDistance(FromInt(10), 0))
}

func TestRangeAndSaturate(t *testing.T) {
	assert.True(t, InRange(MaxUnits))
	assert.True(t, InRange(MinUnits))
	assert.False(t, InRange(MaxUnits+1))
	assert.False(t, InRange(-40000))
	assert.Equal(t, 32767, FromInt(MaxUnits).Int())
	assert.Equal(t, -32768, FromInt(MinUnits).Int())

	assert.Equal(t, MaxFixed, Saturate(int64(MaxFixed)+1))
	assert.Equal(t, MinFixed, Saturate(int64(MinFixed)-5))
	assert.Equal(t, FromInt(12), Saturate(int64(FromInt(12))))
}
