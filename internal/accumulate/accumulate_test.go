package accumulate_test

import (
	"testing"

	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulators_ConstantInput(t *testing.T) {
	tests := []struct {
		name string
		acc  accumulate.Accumulator
	}{
		{"cma", accumulate.NewCMA("loss", "kld_loss")},
		{"ema", accumulate.NewEMA(100, "loss", "kld_loss")},
		{"sma", accumulate.NewSMA(3, "loss", "kld_loss")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 10 {
				tt.acc.Push(0.1, -2.5)
			}
			assert.InDeltaSlice(t, []float64{0.1, -2.5}, tt.acc.Value(), 1e-12)
			assert.InDelta(t, 0.1, tt.acc.Get("loss"), 1e-12)
			assert.Equal(t, 10, tt.acc.Count())
			assert.Equal(t, []string{"loss", "kld_loss"}, tt.acc.Labels())

			tt.acc.Reset()
			assert.Equal(t, 0, tt.acc.Count())
			assert.Equal(t, []float64{0, 0}, tt.acc.Value())
		})
	}
}

func TestAccumulators_WrongLength(t *testing.T) {
	for _, acc := range []accumulate.Accumulator{
		accumulate.NewCMA("a", "b"),
		accumulate.NewEMA(5, "a", "b"),
		accumulate.NewSMA(5, "a", "b"),
	} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				assert.ErrorIs(t, err, accumulate.ErrChannelCount)
			}()
			acc.Push(1)
		}()
	}
}

func TestAccumulators_UnknownLabel(t *testing.T) {
	acc := accumulate.NewCMA("loss")
	assert.Panics(t, func() { acc.Get("nope") })
	assert.Panics(t, func() { accumulate.NewCMA("a", "a") })
	assert.Panics(t, func() { accumulate.NewCMA() })
}

func TestCMA(t *testing.T) {
	acc := accumulate.NewCMA("loss")
	for _, v := range []float64{1, 2, 3, 4} {
		acc.Push(v)
	}
	assert.InDelta(t, 2.5, acc.Get("loss"), 1e-12)
	assert.Equal(t, map[string]float64{"loss": 2.5}, acc.Map())
}

func TestEMA(t *testing.T) {
	acc := accumulate.NewEMA(3, "x")
	assert.InDelta(t, 0.5, acc.Alpha(), 1e-15)

	acc.Push(4) // seeds
	assert.InDelta(t, 4, acc.Get("x"), 1e-12)
	acc.Push(0)
	assert.InDelta(t, 2, acc.Get("x"), 1e-12)
	acc.Push(2)
	assert.InDelta(t, 2, acc.Get("x"), 1e-12)

	acc.Reset()
	acc.Push(10)
	assert.InDelta(t, 10, acc.Get("x"), 1e-12)
	assert.Panics(t, func() { accumulate.NewEMA(0, "x") })
}

func TestSMA_Window(t *testing.T) {
	acc := accumulate.NewSMA(2, "x")
	assert.Equal(t, 2, acc.Size())

	acc.Push(1)
	assert.InDelta(t, 1, acc.Get("x"), 1e-12)
	acc.Push(3)
	assert.InDelta(t, 2, acc.Get("x"), 1e-12)
	acc.Push(5)
	assert.InDelta(t, 4, acc.Get("x"), 1e-12)
	acc.Push(7)
	assert.InDelta(t, 6, acc.Get("x"), 1e-12)
	assert.Equal(t, 4, acc.Count())

	acc.Reset()
	acc.Push(9)
	assert.InDelta(t, 9, acc.Get("x"), 1e-12)
}

func TestFormatAndMerge(t *testing.T) {
	a := accumulate.NewCMA("loss", "kld_loss")
	a.Push(1.5, 0.25)
	b := accumulate.NewEMA(10, "gan_loss")
	b.Push(3)

	assert.Equal(t, "loss=1.5 kld_loss=0.25", accumulate.Format(a))
	assert.Equal(t, map[string]float64{"loss": 1.5, "kld_loss": 0.25, "gan_loss": 3}, accumulate.Merge(a, b))
}
