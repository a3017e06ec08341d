package ij

// ImageProcessor holds the state shared by all processors.
type ImageProcessor struct {
	width          int
	height         int
	lineWidth      int
	interpolate    bool
	snapshotPixels any
}

func (ip *ImageProcessor) Width() int  { return ip.width }
func (ip *ImageProcessor) Height() int { return ip.height }

func (ip *ImageProcessor) LineWidth() int { return ip.lineWidth }

func (ip *ImageProcessor) SetLineWidth(w int) { ip.lineWidth = max(w, 1) }

func (ip *ImageProcessor) SetInterpolate(on bool) { ip.interpolate = on }

// ByteProcessor is an 8-bit grayscale processor.
type ByteProcessor struct {
	ImageProcessor
	pixels []byte
}

// NewByteProcessor wraps pixels, which must hold width*height values.
func NewByteProcessor(width, height int, pixels []byte) *ByteProcessor {
	if pixels == nil {
		pixels = make([]byte, width*height)
	}

	return &ByteProcessor{
		ImageProcessor: ImageProcessor{width: width, height: height, lineWidth: 1},
		pixels:         pixels,
	}
}

func (bp *ByteProcessor) Pixels() []byte { return bp.pixels }

// Snapshot saves a copy of the pixels, as the host's undo does.
func (bp *ByteProcessor) Snapshot() {
	bp.snapshotPixels = append([]byte(nil), bp.pixels...)
}

// FloatProcessor is a 32-bit floating point processor.
type FloatProcessor struct {
	ImageProcessor
	pixels []float32
	min    float64
	max    float64
}

// NewFloatProcessor wraps pixels, which must hold width*height values.
func NewFloatProcessor(width, height int, pixels []float32) *FloatProcessor {
	if pixels == nil {
		pixels = make([]float32, width*height)
	}

	return &FloatProcessor{
		ImageProcessor: ImageProcessor{width: width, height: height, lineWidth: 1},
		pixels:         pixels,
	}
}

func (fp *FloatProcessor) Pixels() []float32 { return fp.pixels }

// SetMinAndMax sets the display range.
func (fp *FloatProcessor) SetMinAndMax(lo, hi float64) {
	fp.min, fp.max = lo, hi
}

// Calibration holds the spatial calibration of an image.
type Calibration struct {
	PixelWidth  float64
	PixelHeight float64
	Unit        string
}
