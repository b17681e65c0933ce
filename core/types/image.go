package types

import (
	"encoding/base64"
	"errors"
	"image"
	"strings"

	"github.com/dvschultz/MUNIT-runway/core/imaging"
)

// Image is a decoded bitmap in process, a base64 data-URI string on the
// wire.
type Image struct {
	BaseType
	channels  int
	mode      imaging.Mode
	format    imaging.Format
	minWidth  *int
	maxWidth  *int
	minHeight *int
	maxHeight *int
}

// ImageOptions configures an Image type.
type ImageOptions struct {
	Name        string
	Description string

	// Channels must be 1, 3 or 4. Defaults to 3.
	Channels int

	MinWidth  *int
	MaxWidth  *int
	MinHeight *int
	MaxHeight *int

	// DefaultOutputFormat is the codec used by Serialize ("JPEG" or
	// "PNG"). Defaults to JPEG for 3 channels, PNG otherwise.
	DefaultOutputFormat string
}

// NewImage constructs an image type.
func NewImage(opts ImageOptions) (*Image, error) {
	channels := opts.Channels
	if channels == 0 {
		channels = 3
	}
	mode, err := imaging.ModeForChannels(channels)
	if err != nil {
		return nil, invalidArg("channels", "channels must be 1, 3 or 4, got %d", channels)
	}
	var format imaging.Format
	if opts.DefaultOutputFormat == "" {
		if channels == 3 {
			format = imaging.JPEG
		} else {
			format = imaging.PNG
		}
	} else {
		format, err = imaging.ParseFormat(opts.DefaultOutputFormat)
		if err != nil {
			return nil, invalidArg("default_output_format", "%v", err)
		}
	}
	return &Image{
		BaseType:  NewBase(KindImage, opts.Name, opts.Description),
		channels:  channels,
		mode:      mode,
		format:    format,
		minWidth:  opts.MinWidth,
		maxWidth:  opts.MaxWidth,
		minHeight: opts.MinHeight,
		maxHeight: opts.MaxHeight,
	}, nil
}

// Channels returns the configured channel count.
func (i *Image) Channels() int { return i.channels }

// DefaultOutputFormat returns the codec used by Serialize.
func (i *Image) DefaultOutputFormat() string { return string(i.format) }

func (i *Image) Describe() Dict {
	d := i.BaseType.Describe()
	d["channels"] = i.channels
	d["minWidth"] = optInt(i.minWidth)
	d["maxWidth"] = optInt(i.maxWidth)
	d["minHeight"] = optInt(i.minHeight)
	d["maxHeight"] = optInt(i.maxHeight)
	d["defaultOutputFormat"] = string(i.format)
	return d
}

// Serialize encodes a decoded bitmap or a raw numeric pixel array into a
// base64 data URI. Single-channel types force luminance mode before
// encoding regardless of the input's channel count.
func (i *Image) Serialize(v any) (any, error) {
	bm, err := i.bitmap(v)
	if err != nil {
		return nil, err
	}
	if i.channels == 1 {
		bm = bm.Convert(imaging.ModeL)
	}
	data, err := bm.Encode(i.format)
	if err != nil {
		return nil, invalidArg(i.argName(), "%v", err)
	}
	return encodeDataURI(data, i.format), nil
}

// Deserialize decodes a data-URI string into a bitmap whose color mode
// matches the configured channel count.
func (i *Image) Deserialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidArg(i.argName(), "value %v (%T) is not a data URI string", v, v)
	}
	data, err := decodeDataURI(s)
	if err != nil {
		return nil, invalidArg(i.argName(), "%v", err)
	}
	bm, err := imaging.Decode(data)
	if err != nil {
		return nil, invalidArg(i.argName(), "%v", err)
	}
	return bm.Convert(i.mode), nil
}

// bitmap coerces serialize input: an already-decoded bitmap, a stdlib
// image, or a raw H×W(×C) numeric array.
func (i *Image) bitmap(v any) (*imaging.Bitmap, error) {
	switch in := v.(type) {
	case *imaging.Bitmap:
		return in, nil
	case image.Image:
		return imaging.FromImage(in), nil
	case nil, bool, string:
		return nil, invalidArg(i.argName(), "value %v (%T) is not a bitmap or pixel array", v, v)
	}
	bm, err := imaging.FromArray(v)
	if err != nil {
		return nil, invalidArg(i.argName(), "%v", err)
	}
	return bm, nil
}

const dataURIScheme = "data:image/"

// encodeDataURI wraps encoded image bytes in the data-URI wire format
// identifying the codec.
func encodeDataURI(data []byte, format imaging.Format) string {
	return dataURIScheme + format.MIMESubtype() + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// decodeDataURI unwraps a data-URI string and decodes its base64
// payload. An empty payload is malformed.
func decodeDataURI(s string) ([]byte, error) {
	if !strings.HasPrefix(s, dataURIScheme) {
		return nil, errMalformedDataURI
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return nil, errMalformedDataURI
	}
	payload := s[idx+1:]
	if payload == "" {
		return nil, errMalformedDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errMalformedDataURI
	}
	return data, nil
}

var errMalformedDataURI = errors.New("malformed image data URI")
