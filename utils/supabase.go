package utils

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	storage "github.com/supabase-community/storage-go"
)

// StoredFile says where a saved file ended up: a local path or a public URL.
type StoredFile struct {
	Path string
	URL  string
}

type FileStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (StoredFile, error)
}

// LocalFileStore writes files under Dir.
type LocalFileStore struct {
	Dir string
}

func (s LocalFileStore) Save(_ context.Context, name string, data []byte, _ string) (StoredFile, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return StoredFile{}, errors.Wrap(err, "create export dir")
	}
	p := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return StoredFile{}, errors.Wrapf(err, "write %s", p)
	}
	return StoredFile{Path: p}, nil
}

// SupabaseStore uploads files to a Supabase storage bucket.
type SupabaseStore struct {
	client *storage.Client
	bucket string
	folder string
}

func NewSupabaseStore(supabaseURL, supabaseKey, bucket, folder string) *SupabaseStore {
	return &SupabaseStore{
		client: storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil),
		bucket: bucket,
		folder: folder,
	}
}

func (s *SupabaseStore) Save(_ context.Context, name string, data []byte, contentType string) (StoredFile, error) {
	objectPath := name
	if s.folder != "" {
		objectPath = s.folder + "/" + name
	}

	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), options); err != nil {
		return StoredFile{}, errors.Wrapf(err, "upload %s", objectPath)
	}

	publicURL := s.client.GetPublicUrl(s.bucket, objectPath)
	return StoredFile{URL: publicURL.SignedURL}, nil
}
