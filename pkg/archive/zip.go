// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package archive unpacks benchmark artifact archives.
package archive

import (
	"archive/zip"
	"io"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// ExtractZip unpacks zr into dir on fs, overwriting any existing files so
// repeated extraction converges on the same end state. Entries that would
// escape dir are rejected; non-regular entries other than directories are
// skipped.
func ExtractZip(zr *zip.Reader, fs billy.Filesystem, dir string) error {
	for _, f := range zr.File {
		name := path.Clean(f.Name)
		if name == ".." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
			return errors.Errorf("archive entry escapes destination: %s", f.Name)
		}
		if name == "." {
			continue
		}
		dest := fs.Join(dir, name)
		if f.FileInfo().IsDir() {
			if err := fs.MkdirAll(dest, 0755); err != nil {
				return errors.Wrapf(err, "creating directory %s", name)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		if err := extractFile(f, fs, dest); err != nil {
			return errors.Wrapf(err, "extracting %s", name)
		}
	}
	return nil
}

// ExtractZipFile unpacks the zip archive at src on fs into dir.
func ExtractZipFile(fs billy.Filesystem, src, dir string) error {
	fi, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "stating %s", src)
	}
	f, err := fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer f.Close()
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}
	return ExtractZip(zr, fs, dir)
}

func extractFile(f *zip.File, fs billy.Filesystem, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := fs.MkdirAll(path.Dir(dest), 0755); err != nil {
		return err
	}
	w, err := fs.Create(dest)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := io.Copy(w, rc); err != nil {
		return err
	}
	return w.Close()
}
