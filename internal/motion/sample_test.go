package motion

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 2}
	w := Vec3{X: 0, Y: 0, Z: -1}

	assert.InDelta(t, 3.0, v.Norm(), 1e-12)
	assert.Equal(t, -2.0, v.Dot(w))
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 4}, v.Scale(2))
	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, v.Sub(w))
}

func TestSampleValidate(t *testing.T) {
	tests := []struct {
		name    string
		sample  Sample
		wantErr bool
	}{
		{"zero sample", Sample{}, false},
		{"regular sample", Sample{Seq: 4, Accel: Vec3{X: 0.1}, Gravity: Vec3{Z: -1}, Rotation: Vec3{Y: 0.3}}, false},
		{"NaN accel", Sample{Accel: Vec3{X: math.NaN()}}, true},
		{"Inf gravity", Sample{Gravity: Vec3{Z: math.Inf(-1)}}, true},
		{"NaN rotation", Sample{Rotation: Vec3{Y: math.NaN()}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sample.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidSample), "expected ErrInvalidSample, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
