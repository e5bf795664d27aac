package data

import (
	"iter"
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Loader yields mini-batches of a dataset as tensors.
//
// The last batch of an epoch holds the remaining samples and may be
// smaller than BatchSize.
type Loader[B tensor.Backend] struct {
	ds        *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	backend   B
}

// NewLoader creates a loader. With shuffle set, each epoch visits the
// samples in a new order drawn from a generator seeded with seed.
func NewLoader[B tensor.Backend](ds *Dataset, batchSize int, shuffle bool, seed uint64, backend B) *Loader[B] {
	if batchSize <= 0 {
		panic("data.NewLoader: batch size must be positive")
	}
	return &Loader[B]{
		ds:        ds,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewPCG(seed, seed+1)),
		backend:   backend,
	}
}

// NumBatches returns the number of batches per epoch.
func (l *Loader[B]) NumBatches() int {
	return (l.ds.Len() + l.batchSize - 1) / l.batchSize
}

// Batches returns one epoch of (inputs [n, features], labels [n, 1]) pairs.
func (l *Loader[B]) Batches() iter.Seq2[*tensor.Tensor[B], *tensor.Tensor[B]] {
	order := make([]int, l.ds.Len())
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	return func(yield func(*tensor.Tensor[B], *tensor.Tensor[B]) bool) {
		for start := 0; start < len(order); start += l.batchSize {
			idx := order[start:min(start+l.batchSize, len(order))]
			x, y := l.gather(idx)
			if !yield(x, y) {
				return
			}
		}
	}
}

func (l *Loader[B]) gather(idx []int) (*tensor.Tensor[B], *tensor.Tensor[B]) {
	f := l.ds.Features
	x := tensor.Zeros(tensor.Shape{len(idx), f}, l.backend)
	y := tensor.Zeros(tensor.Shape{len(idx), 1}, l.backend)
	xs, ys := x.Data(), y.Data()
	for row, i := range idx {
		copy(xs[row*f:(row+1)*f], l.ds.Sample(i))
		ys[row] = l.ds.Labels[i]
	}
	return x, y
}
