package types

// ImagePoint is a 2-element numeric coordinate.
type ImagePoint struct {
	BaseType
}

// ImagePointOptions configures an ImagePoint type.
type ImagePointOptions struct {
	Name        string
	Description string
}

// NewImagePoint constructs a point type.
func NewImagePoint(opts ImagePointOptions) *ImagePoint {
	return &ImagePoint{BaseType: NewBase(KindImagePoint, opts.Name, opts.Description)}
}

func (p *ImagePoint) Serialize(v any) (any, error)   { return p.coerce(v) }
func (p *ImagePoint) Deserialize(v any) (any, error) { return p.coerce(v) }

func (p *ImagePoint) coerce(v any) (any, error) {
	s, ok := floatSlice(v)
	if !ok {
		return nil, invalidArg(p.argName(), "value %v is not a numeric sequence", v)
	}
	if len(s) != 2 {
		return nil, invalidArg(p.argName(), "expected 2 coordinates, got %d", len(s))
	}
	return s, nil
}

// ImageBoundingBox is a 4-element numeric box [minX, minY, maxX, maxY]
// with minX < maxX and minY < maxY. The ordering invariant is checked on
// both serialize and deserialize, never at construction.
type ImageBoundingBox struct {
	BaseType
}

// ImageBoundingBoxOptions configures an ImageBoundingBox type.
type ImageBoundingBoxOptions struct {
	Name        string
	Description string
}

// NewImageBoundingBox constructs a bounding box type.
func NewImageBoundingBox(opts ImageBoundingBoxOptions) *ImageBoundingBox {
	return &ImageBoundingBox{BaseType: NewBase(KindImageBoundingBox, opts.Name, opts.Description)}
}

func (b *ImageBoundingBox) Serialize(v any) (any, error)   { return b.coerce(v) }
func (b *ImageBoundingBox) Deserialize(v any) (any, error) { return b.coerce(v) }

func (b *ImageBoundingBox) coerce(v any) (any, error) {
	s, ok := floatSlice(v)
	if !ok {
		return nil, invalidArg(b.argName(), "value %v is not a numeric sequence", v)
	}
	if len(s) != 4 {
		return nil, invalidArg(b.argName(), "expected 4 coordinates, got %d", len(s))
	}
	if s[0] >= s[2] || s[1] >= s[3] {
		return nil, invalidArg(b.argName(), "box [%g %g %g %g] must satisfy minX < maxX and minY < maxY", s[0], s[1], s[2], s[3])
	}
	return s, nil
}

// ImageLandmarks is an ordered sequence of exactly Length 2-element
// points, optionally labeled, with optional label-pair connections.
type ImageLandmarks struct {
	BaseType
	length      int
	labels      []string
	connections [][2]string
}

// ImageLandmarksOptions configures an ImageLandmarks type.
type ImageLandmarksOptions struct {
	Name        string
	Description string

	// Length is the required number of landmark points.
	Length int

	// Labels, when given, must contain exactly Length unique entries.
	Labels []string

	// Connections, when given, are label pairs; each endpoint must
	// appear in Labels.
	Connections [][2]string
}

// NewImageLandmarks constructs a landmarks type.
func NewImageLandmarks(opts ImageLandmarksOptions) (*ImageLandmarks, error) {
	if opts.Length < 1 {
		return nil, invalidArg("length", "length must be at least 1, got %d", opts.Length)
	}
	labelSet := make(map[string]bool, len(opts.Labels))
	if opts.Labels != nil {
		if len(opts.Labels) != opts.Length {
			return nil, invalidArg("labels", "expected %d labels, got %d", opts.Length, len(opts.Labels))
		}
		for _, l := range opts.Labels {
			if labelSet[l] {
				return nil, invalidArg("labels", "duplicate label %q", l)
			}
			labelSet[l] = true
		}
	}
	if len(opts.Connections) > 0 {
		if opts.Labels == nil {
			return nil, invalidArg("connections", "connections require labels")
		}
		for _, conn := range opts.Connections {
			for _, end := range conn {
				if !labelSet[end] {
					return nil, invalidArg("connections", "connection endpoint %q is not a label", end)
				}
			}
		}
	}
	l := &ImageLandmarks{
		BaseType: NewBase(KindImageLandmarks, opts.Name, opts.Description),
		length:   opts.Length,
	}
	if opts.Labels != nil {
		l.labels = make([]string, len(opts.Labels))
		copy(l.labels, opts.Labels)
	}
	if opts.Connections != nil {
		l.connections = make([][2]string, len(opts.Connections))
		copy(l.connections, opts.Connections)
	}
	return l, nil
}

// Length returns the required number of points.
func (l *ImageLandmarks) Length() int { return l.length }

func (l *ImageLandmarks) Describe() Dict {
	d := l.BaseType.Describe()
	d["length"] = l.length
	if l.labels != nil {
		labels := make([]string, len(l.labels))
		copy(labels, l.labels)
		d["labels"] = labels
	} else {
		d["labels"] = nil
	}
	if l.connections != nil {
		conns := make([][]string, len(l.connections))
		for i, c := range l.connections {
			conns[i] = []string{c[0], c[1]}
		}
		d["connections"] = conns
	} else {
		d["connections"] = nil
	}
	return d
}

func (l *ImageLandmarks) Serialize(v any) (any, error)   { return l.coerce(v) }
func (l *ImageLandmarks) Deserialize(v any) (any, error) { return l.coerce(v) }

func (l *ImageLandmarks) coerce(v any) (any, error) {
	m, ok := floatMatrix(v)
	if !ok {
		return nil, invalidArg(l.argName(), "value %v is not a sequence of points", v)
	}
	if len(m) != l.length {
		return nil, invalidArg(l.argName(), "expected %d points, got %d", l.length, len(m))
	}
	for i, point := range m {
		if len(point) != 2 {
			return nil, invalidArg(l.argName(), "point %d has %d coordinates, expected 2", i, len(point))
		}
	}
	return m, nil
}
