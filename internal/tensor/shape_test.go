package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 5, Shape{5}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements()) // scalar
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1, 3}.Validate())
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.False(t, Shape{2, 3}.Equal(Shape{2, 3, 1}))
}

func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{7}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"same shape", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"row broadcast", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"col broadcast", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"missing dim", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"bias over batch", Shape{4, 12}, Shape{12}, Shape{4, 12}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}
