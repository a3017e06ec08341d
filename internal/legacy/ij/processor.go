package ij

import "fmt"

// AnchorClass is a class both sides of the legacy boundary define. Loaders
// pick their parent so that it cannot see this name.
const AnchorClass = "ij.ImageProcessor"

// Processor is implemented by every pixel processor.
type Processor interface {
	Width() int
	Height() int
}

// ImageProcessor holds the state shared by all processors.
type ImageProcessor struct {
	width       int
	height      int
	lineWidth   int
	interpolate bool
	// snapshotPixels is the undo buffer. It is never copied across the
	// boundary.
	snapshotPixels any
}

func (ip *ImageProcessor) Width() int  { return ip.width }
func (ip *ImageProcessor) Height() int { return ip.height }

func (ip *ImageProcessor) LineWidth() int { return ip.lineWidth }

func (ip *ImageProcessor) SetLineWidth(w int) {
	if w < 1 {
		w = 1
	}

	ip.lineWidth = w
}

func (ip *ImageProcessor) Interpolate() bool { return ip.interpolate }

func (ip *ImageProcessor) SetInterpolate(on bool) { ip.interpolate = on }

// HasSnapshot reports whether Snapshot was called since the last Reset.
func (ip *ImageProcessor) HasSnapshot() bool { return ip.snapshotPixels != nil }

func newImageProcessor(width, height int) ImageProcessor {
	return ImageProcessor{width: width, height: height, lineWidth: 1}
}

// ByteProcessor is an 8-bit grayscale processor.
type ByteProcessor struct {
	ImageProcessor
	pixels []byte
	// bridged is the host object this processor was mapped from.
	bridged any
}

// NewByteProcessor returns a blank width x height processor.
func NewByteProcessor(width, height int) *ByteProcessor {
	return &ByteProcessor{
		ImageProcessor: newImageProcessor(width, height),
		pixels:         make([]byte, width*height),
	}
}

// Pixels returns the backing pixel slice.
func (bp *ByteProcessor) Pixels() []byte { return bp.pixels }

// Bridged returns the host object this processor was mapped from, or nil.
func (bp *ByteProcessor) Bridged() any { return bp.bridged }

func (bp *ByteProcessor) Get(x, y int) int {
	return int(bp.pixels[y*bp.width+x])
}

func (bp *ByteProcessor) Set(x, y, v int) {
	bp.pixels[y*bp.width+x] = byte(min(max(v, 0), 255))
}

// Snapshot saves the pixels for Reset.
func (bp *ByteProcessor) Snapshot() {
	bp.snapshotPixels = append([]byte(nil), bp.pixels...)
}

// Reset restores the pixels saved by Snapshot.
func (bp *ByteProcessor) Reset() {
	if snap, ok := bp.snapshotPixels.([]byte); ok {
		copy(bp.pixels, snap)
	}

	bp.snapshotPixels = nil
}

// Invert replaces every pixel v by 255-v.
func (bp *ByteProcessor) Invert() {
	bp.Snapshot()

	for i, v := range bp.pixels {
		bp.pixels[i] = 255 - v
	}
}

func (bp *ByteProcessor) String() string {
	return fmt.Sprintf("ByteProcessor[%dx%d]", bp.width, bp.height)
}

// FloatProcessor is a 32-bit floating point processor.
type FloatProcessor struct {
	ImageProcessor
	pixels  []float32
	min     float64
	max     float64
	bridged any
}

// NewFloatProcessor returns a blank width x height processor.
func NewFloatProcessor(width, height int) *FloatProcessor {
	return &FloatProcessor{
		ImageProcessor: newImageProcessor(width, height),
		pixels:         make([]float32, width*height),
	}
}

func (fp *FloatProcessor) Pixels() []float32 { return fp.pixels }

func (fp *FloatProcessor) Bridged() any { return fp.bridged }

func (fp *FloatProcessor) GetF(x, y int) float32 {
	return fp.pixels[y*fp.width+x]
}

func (fp *FloatProcessor) SetF(x, y int, v float32) {
	fp.pixels[y*fp.width+x] = v
}

// ResetMinAndMax recomputes the display range from the pixels.
func (fp *FloatProcessor) ResetMinAndMax() {
	if len(fp.pixels) == 0 {
		fp.min, fp.max = 0, 0
		return
	}

	lo, hi := fp.pixels[0], fp.pixels[0]
	for _, v := range fp.pixels[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}

	fp.min, fp.max = float64(lo), float64(hi)
}

func (fp *FloatProcessor) Min() float64 { return fp.min }
func (fp *FloatProcessor) Max() float64 { return fp.max }

func (fp *FloatProcessor) Invert() {
	fp.snapshotPixels = append([]float32(nil), fp.pixels...)

	for i, v := range fp.pixels {
		fp.pixels[i] = float32(fp.max+fp.min) - v
	}
}

// Calibration holds the spatial calibration of an image.
type Calibration struct {
	PixelWidth  float64
	PixelHeight float64
	Unit        string
	bridged     any
}

// NewCalibration returns an uncalibrated (1 pixel per pixel) calibration.
func NewCalibration() *Calibration {
	return &Calibration{PixelWidth: 1, PixelHeight: 1, Unit: "pixel"}
}

func (c *Calibration) Bridged() any { return c.bridged }

// Scaled reports whether the calibration differs from 1 pixel per pixel.
func (c *Calibration) Scaled() bool {
	return c.PixelWidth != 1 || c.PixelHeight != 1 || c.Unit != "pixel"
}
