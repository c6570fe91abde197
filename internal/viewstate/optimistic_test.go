package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimistic(t *testing.T) {
	tests := []struct {
		name      string
		settle    func(o *Optimistic[bool])
		wantState OptimisticState
		wantValue bool
	}{
		{"server agrees", func(o *Optimistic[bool]) { o.Settle(true) }, Confirmed, true},
		{"server disagrees", func(o *Optimistic[bool]) { o.Settle(false) }, Reverted, false},
		{"request fails", func(o *Optimistic[bool]) { o.Fail() }, Reverted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Apply(false, true)
			assert.Equal(t, Pending, o.State)
			assert.True(t, o.Value)

			tt.settle(o)
			assert.Equal(t, tt.wantState, o.State)
			assert.Equal(t, tt.wantValue, o.Value)
		})
	}
}

func TestOptimisticSettlesOnce(t *testing.T) {
	o := Apply(0, 1)
	assert.True(t, o.Settle(1))
	assert.False(t, o.Fail())
	assert.False(t, o.Settle(2))
	assert.Equal(t, Confirmed, o.State)
	assert.Equal(t, 1, o.Value)
}
