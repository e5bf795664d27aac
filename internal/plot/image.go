package plot

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Image is a row-major image with 1 (grey) or 3 (RGB) interleaved channels
// and intensities in [0, 1]. Values outside the range are clipped.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []float64
}

// Images splits data into consecutive images of the given geometry, one per
// row of a [n, height*width*channels] batch.
func Images(data []float64, height, width, channels int) ([]Image, error) {
	if channels != 1 && channels != 3 {
		return nil, errors.Errorf("images: unsupported channel count %d", channels)
	}
	size := height * width * channels
	if size <= 0 || len(data)%size != 0 {
		return nil, errors.Errorf("images: %d values do not split into %dx%dx%d images",
			len(data), height, width, channels)
	}
	out := make([]Image, len(data)/size)
	for i := range out {
		out[i] = Image{Width: width, Height: height, Channels: channels, Pix: data[i*size : (i+1)*size]}
	}
	return out, nil
}

func (im Image) at(x, y int) color.Color {
	off := (y*im.Width + x) * im.Channels
	if im.Channels == 1 {
		return color.Gray{Y: intensity(im.Pix[off])}
	}
	return color.RGBA{R: intensity(im.Pix[off]), G: intensity(im.Pix[off+1]), B: intensity(im.Pix[off+2]), A: 255}
}

func intensity(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ImageGrid writes images as a PNG grid with cols columns, each pixel
// scaled up scale times by nearest-neighbour replication. cols <= 0 picks a
// square grid and scale <= 0 means 1. Images are separated by one pixel of
// white.
func ImageGrid(path string, images []Image, cols, scale int) error {
	if len(images) == 0 {
		return errors.New("image grid: no images")
	}
	w, h := images[0].Width, images[0].Height
	for i, im := range images {
		if im.Width != w || im.Height != h {
			return errors.Errorf("image grid: image %d is %dx%d, expected %dx%d", i, im.Width, im.Height, w, h)
		}
		if len(im.Pix) != im.Width*im.Height*im.Channels {
			return errors.Errorf("image grid: image %d has %d values for %dx%dx%d",
				i, len(im.Pix), im.Width, im.Height, im.Channels)
		}
	}
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(images)))))
	}
	scale = max(scale, 1)
	rows := (len(images) + cols - 1) / cols

	const pad = 1
	cw, ch := w*scale+pad, h*scale+pad
	canvas := image.NewRGBA(image.Rect(0, 0, cols*cw-pad, rows*ch-pad))
	for i := range canvas.Pix {
		canvas.Pix[i] = 255
	}

	for n, im := range images {
		ox, oy := (n%cols)*cw, (n/cols)*ch
		for y := 0; y < h*scale; y++ {
			for x := 0; x < w*scale; x++ {
				canvas.Set(ox+x, oy+y, im.at(x/scale, y/scale))
			}
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	//nolint:gosec // G304: path is chosen by the caller.
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := png.Encode(f, canvas); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
