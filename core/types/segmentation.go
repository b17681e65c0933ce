package types

import (
	"image"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/dvschultz/MUNIT-runway/core/imaging"
)

// Color is an RGB triple used to render segmentation labels.
type Color [3]uint8

// Segmentation is an image specialized for label maps. On the wire a
// mask may arrive either as a label map (single-channel bitmap whose
// pixel value is the class id) or as a color map (bitmap whose pixel
// colors identify labels through the palette); both representations are
// normalized internally to label ids.
type Segmentation struct {
	BaseType
	labelToID    map[string]int
	idToLabel    map[int]string
	labelToColor map[string]Color
	colorToID    map[Color]int
	defaultLabel string
	defaultID    int
	width        *int
	height       *int
}

// SegmentationOptions configures a Segmentation type.
type SegmentationOptions struct {
	Name        string
	Description string

	// LabelToID maps label names to unique class ids in 0–255.
	LabelToID map[string]int

	// LabelToColor assigns render colors to labels; each value is an
	// RGB triple with channels in 0–255. Labels without an explicit
	// color receive a deterministic generated one.
	LabelToColor map[string][]int

	// DefaultLabel, when given, must be a key of LabelToID. Pixels
	// whose color is not in the palette normalize to this label.
	DefaultLabel string

	Width  *int
	Height *int
}

// NewSegmentation constructs a segmentation type. Every declared label
// ends up with a renderable color.
func NewSegmentation(opts SegmentationOptions) (*Segmentation, error) {
	if opts.LabelToID == nil {
		return nil, missingArg("label_to_id")
	}
	if len(opts.LabelToID) == 0 {
		return nil, invalidArg("label_to_id", "mapping must not be empty")
	}

	idToLabel := make(map[int]string, len(opts.LabelToID))
	labels := make([]string, 0, len(opts.LabelToID))
	for label, id := range opts.LabelToID {
		if id < 0 || id > 255 {
			return nil, invalidArg("label_to_id", "id %d for label %q is outside 0-255", id, label)
		}
		if other, dup := idToLabel[id]; dup {
			return nil, invalidArg("label_to_id", "labels %q and %q share id %d", other, label, id)
		}
		idToLabel[id] = label
		labels = append(labels, label)
	}
	sort.Strings(labels)

	labelToColor := make(map[string]Color, len(labels))
	colorToID := make(map[Color]int, len(labels))
	for label, rgb := range opts.LabelToColor {
		if _, known := opts.LabelToID[label]; !known {
			return nil, invalidArg("label_to_color", "label %q is not in label_to_id", label)
		}
		if len(rgb) != 3 {
			return nil, invalidArg("label_to_color", "color for %q has %d channels, expected 3", label, len(rgb))
		}
		var c Color
		for i, ch := range rgb {
			if ch < 0 || ch > 255 {
				return nil, invalidArg("label_to_color", "color channel %d for %q is outside 0-255", ch, label)
			}
			c[i] = uint8(ch)
		}
		if other, dup := colorToID[c]; dup {
			return nil, invalidArg("label_to_color", "labels %q and %q share a color", idToLabel[other], label)
		}
		labelToColor[label] = c
		colorToID[c] = opts.LabelToID[label]
	}

	// Assign deterministic colors to the remaining labels, in sorted
	// order so the palette never depends on map iteration.
	for _, label := range labels {
		if _, ok := labelToColor[label]; ok {
			continue
		}
		c := generateColor(label)
		for {
			if _, taken := colorToID[c]; !taken {
				break
			}
			c = nextColor(c)
		}
		labelToColor[label] = c
		colorToID[c] = opts.LabelToID[label]
	}

	defaultID := 0
	if opts.DefaultLabel != "" {
		id, ok := opts.LabelToID[opts.DefaultLabel]
		if !ok {
			return nil, invalidArg("default_label", "label %q is not in label_to_id", opts.DefaultLabel)
		}
		defaultID = id
	}

	labelToID := make(map[string]int, len(opts.LabelToID))
	for label, id := range opts.LabelToID {
		labelToID[label] = id
	}

	return &Segmentation{
		BaseType:     NewBase(KindSegmentation, opts.Name, opts.Description),
		labelToID:    labelToID,
		idToLabel:    idToLabel,
		labelToColor: labelToColor,
		colorToID:    colorToID,
		defaultLabel: opts.DefaultLabel,
		defaultID:    defaultID,
		width:        opts.Width,
		height:       opts.Height,
	}, nil
}

// LabelToID returns the label-to-class-id mapping.
func (s *Segmentation) LabelToID() map[string]int {
	out := make(map[string]int, len(s.labelToID))
	for k, v := range s.labelToID {
		out[k] = v
	}
	return out
}

// ColorFor returns the render color assigned to a declared label.
func (s *Segmentation) ColorFor(label string) (Color, bool) {
	c, ok := s.labelToColor[label]
	return c, ok
}

func (s *Segmentation) Describe() Dict {
	d := s.BaseType.Describe()
	labelToID := make(map[string]int, len(s.labelToID))
	for k, v := range s.labelToID {
		labelToID[k] = v
	}
	labelToColor := make(map[string][]int, len(s.labelToColor))
	for label, c := range s.labelToColor {
		labelToColor[label] = []int{int(c[0]), int(c[1]), int(c[2])}
	}
	d["labelToId"] = labelToID
	d["labelToColor"] = labelToColor
	d["defaultLabel"] = optString(s.defaultLabel)
	d["width"] = optInt(s.width)
	d["height"] = optInt(s.height)
	return d
}

// Serialize normalizes a bitmap or raw pixel array to label ids and
// encodes the rendered color map as a PNG data URI.
func (s *Segmentation) Serialize(v any) (any, error) {
	bm, err := s.bitmap(v)
	if err != nil {
		return nil, err
	}
	ids := s.labelMap(bm)
	colored := s.renderColorMap(ids)
	data, err := colored.Encode(imaging.PNG)
	if err != nil {
		return nil, invalidArg(s.argName(), "%v", err)
	}
	return encodeDataURI(data, imaging.PNG), nil
}

// Deserialize decodes a data-URI mask in either representation and
// returns the normalized single-channel label-map bitmap.
func (s *Segmentation) Deserialize(v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, invalidArg(s.argName(), "value %v (%T) is not a data URI string", v, v)
	}
	data, err := decodeDataURI(str)
	if err != nil {
		return nil, invalidArg(s.argName(), "%v", err)
	}
	bm, err := imaging.Decode(data)
	if err != nil {
		return nil, invalidArg(s.argName(), "%v", err)
	}
	ids := s.labelMap(bm)
	out := imaging.New(bm.Width(), bm.Height(), imaging.ModeL)
	for y, row := range ids {
		for x, id := range row {
			out.SetGray(x, y, uint8(id))
		}
	}
	return out, nil
}

func (s *Segmentation) bitmap(v any) (*imaging.Bitmap, error) {
	switch in := v.(type) {
	case *imaging.Bitmap:
		return in, nil
	case image.Image:
		return imaging.FromImage(in), nil
	case nil, bool, string:
		return nil, invalidArg(s.argName(), "value %v (%T) is not a bitmap or pixel array", v, v)
	}
	bm, err := imaging.FromArray(v)
	if err != nil {
		return nil, invalidArg(s.argName(), "%v", err)
	}
	return bm, nil
}

// labelMap normalizes a mask bitmap to class ids. Single-channel
// bitmaps already hold ids; color bitmaps go through the palette, with
// unknown colors falling back to the default label's id.
func (s *Segmentation) labelMap(bm *imaging.Bitmap) [][]int {
	w, h := bm.Width(), bm.Height()
	ids := make([][]int, h)
	single := bm.Mode() == imaging.ModeL
	for y := 0; y < h; y++ {
		ids[y] = make([]int, w)
		for x := 0; x < w; x++ {
			if single {
				ids[y][x] = int(bm.GrayAt(x, y))
				continue
			}
			r, g, b := bm.RGBAt(x, y)
			if id, ok := s.colorToID[Color{r, g, b}]; ok {
				ids[y][x] = id
			} else {
				ids[y][x] = s.defaultID
			}
		}
	}
	return ids
}

// renderColorMap paints class ids with the palette. Ids that were never
// declared render as the default label's color.
func (s *Segmentation) renderColorMap(ids [][]int) *imaging.Bitmap {
	h := len(ids)
	w := 0
	if h > 0 {
		w = len(ids[0])
	}
	out := imaging.New(w, h, imaging.ModeRGB)
	fallback := s.labelToColor[s.idToLabel[s.defaultID]]
	for y, row := range ids {
		for x, id := range row {
			c := fallback
			if label, ok := s.idToLabel[id]; ok {
				c = s.labelToColor[label]
			}
			out.SetRGB(x, y, c[0], c[1], c[2])
		}
	}
	return out
}

// generateColor derives a stable color from the label name. The exact
// palette is an implementation detail; only determinism is promised.
func generateColor(label string) Color {
	sum := blake2b.Sum256([]byte(label))
	return Color{sum[0], sum[1], sum[2]}
}

// nextColor resolves a palette collision by walking the color space.
func nextColor(c Color) Color {
	v := uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
	v = (v + 1) & 0xffffff
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}
