package types

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dvschultz/MUNIT-runway/core/fetch"
)

// Fetcher acquires remote resources for file deserialization. The
// production implementation is the shared download cache in core/fetch;
// tests substitute fakes.
type Fetcher interface {
	// File fetches a single remote file and returns its local path.
	File(ctx context.Context, url string) (string, error)

	// Archive fetches a tar-style archive, extracts it, and returns
	// the extraction directory path.
	Archive(ctx context.Context, url string) (string, error)
}

// File is a path or URL on the wire and always a local filesystem path
// natively. Directory is the same variant with IsDirectory forced.
type File struct {
	BaseType
	isDirectory bool
	extension   string
	fetcher     Fetcher
}

// FileOptions configures a File type.
type FileOptions struct {
	Name        string
	Description string

	// IsDirectory marks the resource as a directory; remote URLs then
	// fetch and extract an archive.
	IsDirectory bool

	// Extension, when set, constrains the path suffix of regular
	// files (e.g. ".txt").
	Extension string

	// Fetcher overrides the shared download cache.
	Fetcher Fetcher
}

// NewFile constructs a file type.
func NewFile(opts FileOptions) *File {
	return &File{
		BaseType:    NewBase(KindFile, opts.Name, opts.Description),
		isDirectory: opts.IsDirectory,
		extension:   opts.Extension,
		fetcher:     opts.Fetcher,
	}
}

// DirectoryOptions configures a Directory type.
type DirectoryOptions struct {
	Name        string
	Description string
	Fetcher     Fetcher
}

// NewDirectory constructs a File with IsDirectory forced true.
func NewDirectory(opts DirectoryOptions) *File {
	return NewFile(FileOptions{
		Name:        opts.Name,
		Description: opts.Description,
		IsDirectory: true,
		Fetcher:     opts.Fetcher,
	})
}

// IsDirectory reports whether this type describes a directory.
func (f *File) IsDirectory() bool { return f.isDirectory }

func (f *File) Describe() Dict {
	d := f.BaseType.Describe()
	d["isDirectory"] = f.isDirectory
	if f.extension != "" {
		d["extension"] = f.extension
	}
	return d
}

// Serialize returns the path or URL string unchanged; no local
// existence check happens on the way out.
func (f *File) Serialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidArg(f.argName(), "value %v (%T) is not a path or URL string", v, v)
	}
	return s, nil
}

// Deserialize resolves a wire value to a local path. Local paths must
// exist (and match the extension constraint for regular files); remote
// URLs go through the fetch collaborator, blocking until the download
// (and extraction, for directories) completes. Network and storage
// failures are fatal and propagate unwrapped.
func (f *File) Deserialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidArg(f.argName(), "value %v (%T) is not a path or URL string", v, v)
	}

	if isRemote(s) {
		fetcher := f.fetcher
		if fetcher == nil {
			shared, err := fetch.Default()
			if err != nil {
				return nil, fmt.Errorf("open download cache: %w", err)
			}
			fetcher = shared
		}
		ctx := context.Background()
		if f.isDirectory {
			return fetcher.Archive(ctx, s)
		}
		path, err := fetcher.File(ctx, s)
		if err != nil {
			return nil, err
		}
		if err := f.checkExtension(path); err != nil {
			return nil, err
		}
		return path, nil
	}

	if _, err := os.Stat(s); err != nil {
		return nil, invalidArg(f.argName(), "path %q does not exist", s)
	}
	if !f.isDirectory {
		if err := f.checkExtension(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (f *File) checkExtension(path string) error {
	if f.extension == "" || strings.HasSuffix(path, f.extension) {
		return nil
	}
	return invalidArg(f.argName(), "path %q does not have extension %q", path, f.extension)
}

// isRemote reports whether the wire value is a URL rather than a local
// path.
func isRemote(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
