package data

import (
	"github.com/petar/GoMNIST"
	"github.com/pkg/errors"
)

// LoadMNIST reads the gzipped IDX files of the MNIST training or test set
// from dir (train-images-idx3-ubyte.gz and friends). Pixels are scaled to
// [0, 1]. limit > 0 keeps only the first limit samples.
func LoadMNIST(dir string, train bool, limit int) (*Dataset, error) {
	trainSet, testSet, err := GoMNIST.Load(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "load mnist from %s", dir)
	}
	set := testSet
	if train {
		set = trainSet
	}
	return fromMNIST(set, limit)
}

func fromMNIST(set *GoMNIST.Set, limit int) (*Dataset, error) {
	n := set.Count()
	if limit > 0 && limit < n {
		n = limit
	}
	features := set.NRow * set.NCol
	ds := &Dataset{
		Inputs:   make([]float64, n*features),
		Labels:   make([]float64, n),
		Features: features,
		Rows:     set.NRow,
		Cols:     set.NCol,
	}
	for i := range n {
		img, label := set.Get(i)
		if len(img) != features {
			return nil, errors.Errorf("mnist: image %d has %d pixels, want %d", i, len(img), features)
		}
		row := ds.Sample(i)
		for j, px := range img {
			row[j] = float64(px) / 255
		}
		ds.Labels[i] = float64(label)
	}
	return ds, nil
}
