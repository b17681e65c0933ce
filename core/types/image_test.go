package types

import (
	"strings"
	"testing"

	"github.com/dvschultz/MUNIT-runway/core/imaging"
)

func testBitmap(t *testing.T, mode imaging.Mode) *imaging.Bitmap {
	t.Helper()
	b := imaging.New(4, 3, mode)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if mode == imaging.ModeL {
				b.SetGray(x, y, uint8(40*x+20*y))
			} else {
				b.SetRGB(x, y, uint8(60*x), uint8(80*y), 128)
			}
		}
	}
	return b
}

func TestImageDescribe(t *testing.T) {
	minW, minH, maxW, maxH := 128, 128, 512, 512
	img, err := NewImage(ImageOptions{
		Channels:  3,
		MinWidth:  &minW,
		MinHeight: &minH,
		MaxWidth:  &maxW,
		MaxHeight: &maxH,
	})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}
	d := img.Describe()

	if d["type"] != "image" {
		t.Errorf("type = %v, want %q", d["type"], "image")
	}
	if d["channels"] != 3 {
		t.Errorf("channels = %v, want 3", d["channels"])
	}
	if d["minWidth"] != 128 || d["maxWidth"] != 512 {
		t.Errorf("width bounds = %v..%v, want 128..512", d["minWidth"], d["maxWidth"])
	}
	if d["minHeight"] != 128 || d["maxHeight"] != 512 {
		t.Errorf("height bounds = %v..%v, want 128..512", d["minHeight"], d["maxHeight"])
	}
	if d["defaultOutputFormat"] != "JPEG" {
		t.Errorf("defaultOutputFormat = %v, want JPEG", d["defaultOutputFormat"])
	}
	if d["description"] != nil {
		t.Errorf("description = %v, want nil", d["description"])
	}
}

func TestImageDefaultOutputFormat(t *testing.T) {
	cases := []struct {
		opts ImageOptions
		want string
	}{
		{ImageOptions{DefaultOutputFormat: "PNG"}, "PNG"},
		{ImageOptions{Channels: 3}, "JPEG"},
		{ImageOptions{Channels: 4}, "PNG"},
		{ImageOptions{Channels: 1}, "PNG"},
	}
	for _, tc := range cases {
		img, err := NewImage(tc.opts)
		if err != nil {
			t.Fatalf("NewImage(%+v) error: %v", tc.opts, err)
		}
		if img.DefaultOutputFormat() != tc.want {
			t.Errorf("DefaultOutputFormat() = %q, want %q", img.DefaultOutputFormat(), tc.want)
		}
	}
}

func TestImageConstructionErrors(t *testing.T) {
	if _, err := NewImage(ImageOptions{DefaultOutputFormat: "TXT"}); !IsInvalidArgument(err) {
		t.Errorf("format TXT error = %v, want InvalidArgumentError", err)
	}
	if _, err := NewImage(ImageOptions{Channels: 2}); !IsInvalidArgument(err) {
		t.Errorf("channels 2 error = %v, want InvalidArgumentError", err)
	}
}

func TestImageSerializeAndDeserialize(t *testing.T) {
	img, err := NewImage(ImageOptions{})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}

	wire, err := img.Serialize(testBitmap(t, imaging.ModeRGB))
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	uri, ok := wire.(string)
	if !ok {
		t.Fatalf("Serialize = %T, want string", wire)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("data URI prefix = %.30q, want data:image/jpeg;base64,", uri)
	}

	native, err := img.Deserialize(uri)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	bm, ok := native.(*imaging.Bitmap)
	if !ok {
		t.Fatalf("Deserialize = %T, want *imaging.Bitmap", native)
	}
	if bm.Mode() != imaging.ModeRGB {
		t.Errorf("Mode() = %v, want RGB", bm.Mode())
	}
	if bm.Width() != 4 || bm.Height() != 3 {
		t.Errorf("size = %dx%d, want 4x3", bm.Width(), bm.Height())
	}
}

func TestImageSerializePixelArray(t *testing.T) {
	img, err := NewImage(ImageOptions{Channels: 3, DefaultOutputFormat: "PNG"})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}

	wire, err := img.Serialize([][][]int{
		{{255, 0, 0}, {0, 255, 0}},
		{{0, 0, 255}, {255, 255, 255}},
	})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	uri := wire.(string)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("data URI prefix = %.30q, want data:image/png;base64,", uri)
	}

	native, err := img.Deserialize(uri)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	bm := native.(*imaging.Bitmap)
	r, g, b := bm.RGBAt(0, 0)
	if r != 255 || g != 0 || b != 0 {
		t.Errorf("RGBAt(0,0) = %d,%d,%d, want 255,0,0", r, g, b)
	}
}

func TestImageSingleChannelForcesLuminance(t *testing.T) {
	img, err := NewImage(ImageOptions{Channels: 1})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}

	// RGB input still encodes as a single-channel payload.
	wire, err := img.Serialize(testBitmap(t, imaging.ModeRGB))
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	uri := wire.(string)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("data URI prefix = %.30q, want data:image/png;base64,", uri)
	}

	payload, err := decodeDataURI(uri)
	if err != nil {
		t.Fatalf("decodeDataURI error: %v", err)
	}
	decoded, err := imaging.Decode(payload)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if decoded.Mode() != imaging.ModeL {
		t.Errorf("encoded payload mode = %v, want L", decoded.Mode())
	}
}

func TestImageFourChannelDeserialize(t *testing.T) {
	src, err := NewImage(ImageOptions{Channels: 1})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}
	wire, err := src.Serialize(testBitmap(t, imaging.ModeL))
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}

	img, err := NewImage(ImageOptions{Channels: 4})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}
	native, err := img.Deserialize(wire.(string))
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	bm := native.(*imaging.Bitmap)
	if bm.Mode() != imaging.ModeRGBA {
		t.Errorf("Mode() = %v, want RGBA", bm.Mode())
	}
}

func TestImageSerializeInvalidInput(t *testing.T) {
	img, err := NewImage(ImageOptions{})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}

	invalid := []any{true, []any{}, "data:image/jpeg;base64,", nil, 42}
	for _, v := range invalid {
		if _, err := img.Serialize(v); !IsInvalidArgument(err) {
			t.Errorf("Serialize(%v) error = %v, want InvalidArgumentError", v, err)
		}
	}
}

func TestImageDeserializeInvalidInput(t *testing.T) {
	img, err := NewImage(ImageOptions{})
	if err != nil {
		t.Fatalf("NewImage error: %v", err)
	}

	invalid := []any{
		true,
		42,
		"not a data uri",
		"data:image/jpeg;base64,",         // empty payload
		"data:image/jpeg;base64,!!!!",     // invalid base64
		"data:image/jpeg;base64,aGVsbG8=", // not an image
	}
	for _, v := range invalid {
		if _, err := img.Deserialize(v); !IsInvalidArgument(err) {
			t.Errorf("Deserialize(%v) error = %v, want InvalidArgumentError", v, err)
		}
	}
}
