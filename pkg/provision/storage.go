// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// ErrArtifactNotFound indicates a benchmark artifact is missing from its store.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore is a read-only source of benchmark artifacts.
type ArtifactStore interface {
	// Reader returns the named artifact's content and its size in bytes,
	// or -1 when the size is unknown.
	Reader(ctx context.Context, name string) (io.ReadCloser, int64, error)
}

// GCSStore reads artifacts from a gs:// location.
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSStore creates a GCSStore for the given benchmark home, accepting
// either the bare "bucket/path" form stored in instance metadata or a full
// "gs://bucket/path" URL.
func NewGCSStore(ctx context.Context, home string, opts ...option.ClientOption) (*GCSStore, error) {
	bucket, prefix := splitHome(home)
	if bucket == "" {
		return nil, errors.Errorf("invalid benchmark home %q", home)
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCS client")
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}, nil
}

func splitHome(home string) (bucket, prefix string) {
	home = strings.Trim(strings.TrimPrefix(home, "gs://"), "/")
	bucket, prefix, _ = strings.Cut(home, "/")
	return bucket, prefix
}

// URL returns the gs:// URL of the named artifact.
func (s *GCSStore) URL(name string) *url.URL {
	return &url.URL{Scheme: "gs", Host: s.bucket, Path: "/" + path.Join(s.prefix, name)}
}

// Reader returns a reader for the named artifact.
func (s *GCSStore) Reader(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	obj := s.client.Bucket(s.bucket).Object(path.Join(s.prefix, name))
	r, err := obj.NewReader(ctx)
	if err != nil {
		if err == gcs.ErrObjectNotExist {
			err = stderrors.Join(err, ErrArtifactNotFound)
		}
		return nil, 0, errors.Wrapf(err, "creating GCS reader for %s", s.URL(name))
	}
	return r, r.Attrs.Size, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ ArtifactStore = &GCSStore{}

// FilesystemStore reads artifacts from the root of a billy.Filesystem.
type FilesystemStore struct {
	fs billy.Filesystem
}

// NewFilesystemStore creates a FilesystemStore.
func NewFilesystemStore(fs billy.Filesystem) *FilesystemStore {
	return &FilesystemStore{fs: fs}
}

// Reader returns a reader for the named artifact.
func (s *FilesystemStore) Reader(_ context.Context, name string) (io.ReadCloser, int64, error) {
	fi, err := s.fs.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = stderrors.Join(err, ErrArtifactNotFound)
		}
		return nil, 0, errors.Wrapf(err, "stating %s", name)
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "opening %s", name)
	}
	return f, fi.Size(), nil
}

var _ ArtifactStore = &FilesystemStore{}
