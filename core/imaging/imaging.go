// Package imaging is the image codec collaborator behind the media data
// types: pixel decode/encode for the supported formats plus color-mode
// conversion between luminance, RGB and RGBA bitmaps.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"reflect"
	"strings"
)

// Mode identifies the color mode of a decoded bitmap.
type Mode string

const (
	ModeL    Mode = "L"    // single-channel luminance
	ModeRGB  Mode = "RGB"  // 3 channels, opaque
	ModeRGBA Mode = "RGBA" // 4 channels
)

// Channels returns the channel count for the mode.
func (m Mode) Channels() int {
	switch m {
	case ModeL:
		return 1
	case ModeRGBA:
		return 4
	default:
		return 3
	}
}

// ModeForChannels maps a channel count to its color mode.
func ModeForChannels(channels int) (Mode, error) {
	switch channels {
	case 1:
		return ModeL, nil
	case 3:
		return ModeRGB, nil
	case 4:
		return ModeRGBA, nil
	}
	return "", fmt.Errorf("unsupported channel count %d", channels)
}

// Format identifies a supported output codec.
type Format string

const (
	JPEG Format = "JPEG"
	PNG  Format = "PNG"
)

// ParseFormat validates a codec identifier.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case string(JPEG):
		return JPEG, nil
	case string(PNG):
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// MIMESubtype returns the media subtype used in data URIs.
func (f Format) MIMESubtype() string {
	if f == PNG {
		return "png"
	}
	return "jpeg"
}

// Bitmap is a decoded pixel buffer with an explicit color mode. Luminance
// bitmaps are backed by a grayscale buffer, RGB and RGBA bitmaps by an
// NRGBA buffer (RGB keeps alpha pinned to 255).
type Bitmap struct {
	mode Mode
	gray *image.Gray
	rgba *image.NRGBA
}

// New allocates a zeroed bitmap.
func New(width, height int, mode Mode) *Bitmap {
	b := &Bitmap{mode: mode}
	rect := image.Rect(0, 0, width, height)
	if mode == ModeL {
		b.gray = image.NewGray(rect)
	} else {
		b.rgba = image.NewNRGBA(rect)
		if mode == ModeRGB {
			for i := 3; i < len(b.rgba.Pix); i += 4 {
				b.rgba.Pix[i] = 0xff
			}
		}
	}
	return b
}

// FromImage wraps a decoded image, inferring the mode from its color
// model: grayscale models map to L, models carrying alpha to RGBA,
// everything else to RGB.
func FromImage(img image.Image) *Bitmap {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return convertFromImage(img, ModeL)
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model:
		return convertFromImage(img, ModeRGBA)
	default:
		return convertFromImage(img, ModeRGB)
	}
}

func convertFromImage(img image.Image, mode Mode) *Bitmap {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy(), mode)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if mode == ModeL {
				b.gray.SetGray(x, y, color.GrayModel.Convert(c).(color.Gray))
			} else {
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				if mode == ModeRGB {
					n.A = 0xff
				}
				b.rgba.SetNRGBA(x, y, n)
			}
		}
	}
	return b
}

// Decode decodes PNG or JPEG bytes into a bitmap.
func Decode(data []byte) (*Bitmap, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img), nil
}

// Mode returns the bitmap's color mode.
func (b *Bitmap) Mode() Mode { return b.mode }

// Width returns the pixel width.
func (b *Bitmap) Width() int { return b.image().Bounds().Dx() }

// Height returns the pixel height.
func (b *Bitmap) Height() int { return b.image().Bounds().Dy() }

// Image exposes the underlying stdlib image.
func (b *Bitmap) Image() image.Image { return b.image() }

func (b *Bitmap) image() image.Image {
	if b.mode == ModeL {
		return b.gray
	}
	return b.rgba
}

// Convert returns a bitmap in the requested mode. The receiver is
// returned unchanged when it already has that mode.
func (b *Bitmap) Convert(mode Mode) *Bitmap {
	if b.mode == mode {
		return b
	}
	return convertFromImage(b.image(), mode)
}

// Encode encodes the bitmap with the given codec. Luminance bitmaps
// encode as single-channel payloads in both formats.
func (b *Bitmap) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case PNG:
		err = png.Encode(&buf, b.image())
	case JPEG:
		// JPEG has no alpha channel; flatten RGBA first.
		img := b.image()
		if b.mode == ModeRGBA {
			img = b.Convert(ModeRGB).image()
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// GrayAt returns the luminance value at (x, y), converting on the fly
// for non-luminance bitmaps.
func (b *Bitmap) GrayAt(x, y int) uint8 {
	if b.mode == ModeL {
		return b.gray.GrayAt(x, y).Y
	}
	return color.GrayModel.Convert(b.rgba.NRGBAAt(x, y)).(color.Gray).Y
}

// SetGray writes a luminance value; only valid on mode L bitmaps.
func (b *Bitmap) SetGray(x, y int, v uint8) {
	b.gray.SetGray(x, y, color.Gray{Y: v})
}

// RGBAt returns the color channels at (x, y).
func (b *Bitmap) RGBAt(x, y int) (r, g, bl uint8) {
	if b.mode == ModeL {
		v := b.gray.GrayAt(x, y).Y
		return v, v, v
	}
	c := b.rgba.NRGBAAt(x, y)
	return c.R, c.G, c.B
}

// SetRGB writes opaque color channels; only valid on RGB/RGBA bitmaps.
func (b *Bitmap) SetRGB(x, y int, r, g, bl uint8) {
	b.rgba.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: bl, A: 0xff})
}

// FromArray builds a bitmap from a raw numeric pixel array: H×W arrays
// become luminance bitmaps, H×W×C arrays (C in {1,3,4}) map to the
// matching mode. Values are rounded and clamped to 0–255.
func FromArray(v any) (*Bitmap, error) {
	rows, ok := sequence(v)
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("value is not a pixel array")
	}
	first, ok := sequence(rows[0])
	if !ok || len(first) == 0 {
		return nil, fmt.Errorf("value is not a pixel array")
	}
	height := len(rows)
	width := len(first)

	if _, scalar := pixelValue(first[0]); scalar {
		// H×W luminance array.
		b := New(width, height, ModeL)
		for y, rowv := range rows {
			row, ok := sequence(rowv)
			if !ok || len(row) != width {
				return nil, fmt.Errorf("pixel array row %d is ragged", y)
			}
			for x, cell := range row {
				val, ok := pixelValue(cell)
				if !ok {
					return nil, fmt.Errorf("pixel (%d,%d) is not numeric", x, y)
				}
				b.SetGray(x, y, val)
			}
		}
		return b, nil
	}

	// H×W×C array.
	channels, ok := sequence(first[0])
	if !ok {
		return nil, fmt.Errorf("value is not a pixel array")
	}
	mode, err := ModeForChannels(len(channels))
	if err != nil {
		return nil, err
	}
	b := New(width, height, mode)
	for y, rowv := range rows {
		row, ok := sequence(rowv)
		if !ok || len(row) != width {
			return nil, fmt.Errorf("pixel array row %d is ragged", y)
		}
		for x, cellv := range row {
			cell, ok := sequence(cellv)
			if !ok || len(cell) != len(channels) {
				return nil, fmt.Errorf("pixel (%d,%d) has inconsistent channels", x, y)
			}
			px := make([]uint8, len(cell))
			for i, ch := range cell {
				val, ok := pixelValue(ch)
				if !ok {
					return nil, fmt.Errorf("pixel (%d,%d) is not numeric", x, y)
				}
				px[i] = val
			}
			switch mode {
			case ModeL:
				b.SetGray(x, y, px[0])
			case ModeRGB:
				b.SetRGB(x, y, px[0], px[1], px[2])
			case ModeRGBA:
				b.rgba.SetNRGBA(x, y, color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
			}
		}
	}
	return b, nil
}

// sequence flattens a slice or array value into []any.
func sequence(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// pixelValue coerces a numeric scalar to a clamped 8-bit channel value.
func pixelValue(v any) (uint8, bool) {
	rv := reflect.ValueOf(v)
	var f float64
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(rv.Uint())
	default:
		return 0, false
	}
	f = math.Round(f)
	if f < 0 {
		f = 0
	}
	if f > 255 {
		f = 255
	}
	return uint8(f), true
}
