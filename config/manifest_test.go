package config

import (
	"strings"
	"testing"

	"github.com/dvschultz/MUNIT-runway/core/types"
)

const sampleManifest = `
name: munit
description: Multimodal unsupervised image-to-image translation.
commands:
  - name: translate
    description: Translate an image into the target domain.
    inputs:
      - name: source
        type: image
        channels: 3
      - name: style
        type: vector
        length: 8
        sampling_mean: 0
        sampling_std: 1
      - name: domain
        type: category
        choices: [summer, winter]
        default: winter
    outputs:
      - name: result
        type: image
        channels: 3
        default_output_format: JPEG
  - name: segment
    inputs:
      - name: source
        type: image
    outputs:
      - name: mask
        type: segmentation
        label_to_id:
          background: 0
          foreground: 1
        default_label: background
`

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.Name != "munit" {
		t.Errorf("Name = %q, want munit", m.Name)
	}
	if len(m.Commands) != 2 {
		t.Fatalf("len(Commands) = %d, want 2", len(m.Commands))
	}

	translate := m.Commands[0]
	if translate.Name != "translate" {
		t.Errorf("command name = %q, want translate", translate.Name)
	}
	if len(translate.Inputs) != 3 || len(translate.Outputs) != 1 {
		t.Fatalf("translate has %d inputs / %d outputs, want 3 / 1", len(translate.Inputs), len(translate.Outputs))
	}
	if translate.Inputs[1].Length != 8 {
		t.Errorf("style length = %d, want 8", translate.Inputs[1].Length)
	}
}

func TestParseManifestErrors(t *testing.T) {
	cases := []struct {
		name     string
		yaml     string
		wantPart string
	}{
		{
			name:     "missing name",
			yaml:     "commands:\n  - name: run\n",
			wantPart: "name is required",
		},
		{
			name:     "bad identifier",
			yaml:     "name: my-model\ncommands:\n  - name: run\n",
			wantPart: "not a valid identifier",
		},
		{
			name:     "no commands",
			yaml:     "name: model\n",
			wantPart: "at least one command",
		},
		{
			name:     "duplicate command",
			yaml:     "name: model\ncommands:\n  - name: run\n  - name: run\n",
			wantPart: "duplicate command",
		},
		{
			name: "duplicate field",
			yaml: `name: model
commands:
  - name: run
    inputs:
      - {name: x, type: text}
      - {name: x, type: number}
`,
			wantPart: "duplicate input",
		},
		{
			name: "unknown field type",
			yaml: `name: model
commands:
  - name: run
    inputs:
      - {name: x, type: tensor}
`,
			wantPart: `unknown field type "tensor"`,
		},
		{
			name: "invalid field config",
			yaml: `name: model
commands:
  - name: run
    inputs:
      - {name: x, type: category}
`,
			wantPart: "choices",
		},
		{
			name:     "not yaml",
			yaml:     "{{{",
			wantPart: "parse manifest yaml",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantPart) {
				t.Errorf("error = %v, want it to mention %q", err, tc.wantPart)
			}
		})
	}
}

func TestFieldSpecBuild(t *testing.T) {
	cases := []struct {
		name string
		spec FieldSpec
		kind string
	}{
		{"any", FieldSpec{Name: "x", Type: "any"}, types.KindAny},
		{"text", FieldSpec{Name: "x", Type: "text", Default: "hello"}, types.KindText},
		{"number", FieldSpec{Name: "x", Type: "number", Default: 3}, types.KindNumber},
		{"boolean", FieldSpec{Name: "x", Type: "boolean", Default: true}, types.KindBoolean},
		{"category", FieldSpec{Name: "x", Type: "category", Choices: []string{"a", "b"}}, types.KindCategory},
		{"vector", FieldSpec{Name: "x", Type: "vector", Length: 4}, types.KindVector},
		{"array", FieldSpec{Name: "x", Type: "array", ItemType: &FieldSpec{Type: "text"}}, types.KindArray},
		{"image_point", FieldSpec{Name: "x", Type: "image_point"}, types.KindImagePoint},
		{"image_bounding_box", FieldSpec{Name: "x", Type: "image_bounding_box"}, types.KindImageBoundingBox},
		{"image_landmarks", FieldSpec{Name: "x", Type: "image_landmarks", Length: 3}, types.KindImageLandmarks},
		{"image", FieldSpec{Name: "x", Type: "image"}, types.KindImage},
		{"segmentation", FieldSpec{Name: "x", Type: "segmentation", LabelToID: map[string]int{"bg": 0}}, types.KindSegmentation},
		{"file", FieldSpec{Name: "x", Type: "file", Extension: ".ckpt"}, types.KindFile},
		{"directory", FieldSpec{Name: "x", Type: "directory"}, types.KindFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			built, err := tc.spec.Build()
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}
			if built.Kind() != tc.kind {
				t.Errorf("Kind() = %q, want %q", built.Kind(), tc.kind)
			}
			if built.Name() != "x" {
				t.Errorf("Name() = %q, want x", built.Name())
			}
		})
	}

	t.Run("directory forces isDirectory", func(t *testing.T) {
		built, err := FieldSpec{Name: "x", Type: "directory"}.Build()
		if err != nil {
			t.Fatalf("Build error: %v", err)
		}
		f, ok := built.(*types.File)
		if !ok {
			t.Fatalf("built = %T, want *types.File", built)
		}
		if !f.IsDirectory() {
			t.Error("IsDirectory() = false, want true")
		}
	})

	t.Run("connections", func(t *testing.T) {
		spec := FieldSpec{
			Name:        "pose",
			Type:        "image_landmarks",
			Length:      2,
			Labels:      []string{"head", "neck"},
			Connections: [][]string{{"head", "neck"}},
		}
		if _, err := spec.Build(); err != nil {
			t.Fatalf("Build error: %v", err)
		}

		spec.Connections = [][]string{{"head"}}
		if _, err := spec.Build(); err == nil {
			t.Error("Build accepted a one-endpoint connection, want error")
		}
	})

	t.Run("bad defaults", func(t *testing.T) {
		bad := []FieldSpec{
			{Name: "x", Type: "text", Default: 3},
			{Name: "x", Type: "number", Default: "three"},
			{Name: "x", Type: "boolean", Default: "true"},
			{Name: "x", Type: "vector", Default: "nope"},
		}
		for _, spec := range bad {
			if _, err := spec.Build(); err == nil {
				t.Errorf("Build(%s default %v) succeeded, want error", spec.Type, spec.Default)
			}
		}
	})
}

func TestBuildFields(t *testing.T) {
	built, err := BuildFields([]FieldSpec{
		{Name: "a", Type: "text"},
		{Name: "b", Type: "number"},
	})
	if err != nil {
		t.Fatalf("BuildFields error: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("len = %d, want 2", len(built))
	}
	if built[0].Name() != "a" || built[1].Name() != "b" {
		t.Errorf("names = %q, %q, want a, b", built[0].Name(), built[1].Name())
	}

	if _, err := BuildFields([]FieldSpec{{Name: "a", Type: "wat"}}); err == nil {
		t.Error("BuildFields accepted an unknown type, want error")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"munit", "style_encoder", "Gen2", "_private"}
	for _, s := range valid {
		if !isValidIdentifier(s) {
			t.Errorf("isValidIdentifier(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "2fast", "my-model", "with space", "ünïcode"}
	for _, s := range invalid {
		if isValidIdentifier(s) {
			t.Errorf("isValidIdentifier(%q) = true, want false", s)
		}
	}
}
