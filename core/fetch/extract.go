package fetch

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// extractArchive unpacks a tar or gzip-compressed tar stream into dest,
// returning the number of file bytes written. Entries that would escape
// dest are rejected.
func extractArchive(r io.Reader, dest string) (int64, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("create extraction dir: %w", err)
	}

	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return 0, fmt.Errorf("read archive: %w", err)
	}
	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return 0, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var total int64
	tr := tar.NewReader(src)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read tar entry: %w", err)
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return total, fmt.Errorf("tar entry %q escapes extraction dir", hdr.Name)
		}
		target := filepath.Join(dest, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return total, fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return total, fmt.Errorf("create dir for %s: %w", target, err)
			}
			mode := hdr.FileInfo().Mode().Perm()
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
			if err != nil {
				return total, fmt.Errorf("create file %s: %w", target, err)
			}
			n, err := io.Copy(out, tr)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return total, fmt.Errorf("write file %s: %w", target, err)
			}
			total += n
		default:
			// Links and special files are skipped.
		}
	}
}
