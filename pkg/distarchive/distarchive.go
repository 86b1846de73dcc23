// Package distarchive packs a directory of built launchers and native images
// into a zstd-compressed tar archive carrying a sha256 manifest.
package distarchive

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/valyala/gozstd"

	"native-launchers/go/pkg/logbowl"
)

// ManifestName is the archive member holding the manifest. It is always the
// last member.
const ManifestName = "manifest.json"

// Extension is the conventional file extension of an archive.
const Extension = ".tar.zst"

// ManifestFileEntry describes one regular file in the archive.
type ManifestFileEntry struct {
	PathInArchive string `json:"path_in_archive"`
	Sha256        string `json:"sha256"`
	Size          int64  `json:"size"`
	Executable    bool   `json:"executable"`
}

// Manifest lists every regular file of an archive.
type Manifest struct {
	Files []ManifestFileEntry `json:"files"`
}

// Create archives sourceDir. Paths matching any of the doublestar exclude
// patterns (relative to sourceDir, slash separated) are skipped, and a
// matching directory is skipped with everything below it. Symlinks are
// archived as the files they point to.
func Create(log logbowl.Logger, sourceDir string, excludePatterns []string) ([]byte, error) {
	for _, pattern := range excludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	var buf bytes.Buffer
	zw := gozstd.NewWriter(&buf)
	defer zw.Release()
	tw := tar.NewWriter(zw)

	var manifest Manifest
	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		name := filepath.ToSlash(relPath)
		if name == ManifestName {
			log.Warn("archive", "pack", "skip", "Skipping file that collides with the manifest", "path", name)
			return nil
		}

		for _, pattern := range excludePatterns {
			if match, _ := doublestar.Match(pattern, name); match {
				log.Debug("archive", "pack", "skip", "Excluding path based on pattern", "path", name, "pattern", pattern)
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		realInfo, err := os.Stat(path)
		if err != nil {
			log.Warn("archive", "pack", "skip", "Skipping unreadable path", "path", name, "error", err)
			return nil
		}
		hdr, err := tar.FileInfoHeader(realInfo, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !realInfo.Mode().IsRegular() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		h := sha256.New()
		if _, err := io.Copy(io.MultiWriter(tw, h), file); err != nil {
			return err
		}
		manifest.Files = append(manifest.Files, ManifestFileEntry{
			PathInArchive: name,
			Sha256:        hex.EncodeToString(h.Sum(nil)),
			Size:          realInfo.Size(),
			Executable:    realInfo.Mode().Perm()&0o111 != 0,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := tw.WriteHeader(&tar.Header{Name: ManifestName, Mode: 0644, Size: int64(len(manifestBytes)), Typeflag: tar.TypeReg}); err != nil {
		return nil, err
	}
	if _, err := tw.Write(manifestBytes); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	log.Info("archive", "pack", "success", "Created archive", "source", sourceDir, "files", len(manifest.Files), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// Verify reads a whole archive and checks every regular file against the
// manifest. It returns the manifest when the archive is intact.
func Verify(r io.Reader) (*Manifest, error) {
	zr := gozstd.NewReader(r)
	defer zr.Release()
	tr := tar.NewReader(zr)

	sums := make(map[string]string)
	var manifest *Manifest
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if header.Name == ManifestName {
			manifest = &Manifest{}
			if err := json.NewDecoder(tr).Decode(manifest); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", ManifestName, err)
			}
			continue
		}
		h := sha256.New()
		if _, err := io.Copy(h, tr); err != nil {
			return nil, err
		}
		sums[header.Name] = hex.EncodeToString(h.Sum(nil))
	}
	if manifest == nil {
		return nil, fmt.Errorf("archive has no %s", ManifestName)
	}

	for _, f := range manifest.Files {
		got, ok := sums[f.PathInArchive]
		if !ok {
			return nil, fmt.Errorf("file %s is listed in the manifest but missing from the archive", f.PathInArchive)
		}
		if got != f.Sha256 {
			return nil, fmt.Errorf("checksum mismatch for %s: manifest has %s, archive has %s", f.PathInArchive, f.Sha256, got)
		}
		delete(sums, f.PathInArchive)
	}
	if len(sums) > 0 {
		extra := make([]string, 0, len(sums))
		for name := range sums {
			extra = append(extra, name)
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("files missing from the manifest: %s", strings.Join(extra, ", "))
	}
	return manifest, nil
}

// Extract unpacks an archive below dest and returns the regular files written.
// Members that would land outside dest are rejected.
func Extract(r io.Reader, dest string) ([]string, error) {
	zr := gozstd.NewReader(r)
	defer zr.Release()
	tr := tar.NewReader(zr)

	var files []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		target := filepath.Join(dest, filepath.FromSlash(header.Name))
		if rel, err := filepath.Rel(dest, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("archive member %q escapes the destination directory", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode).Perm())
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return nil, err
			}
			if err := f.Close(); err != nil {
				return nil, err
			}
			files = append(files, header.Name)
		}
	}
	return files, nil
}
