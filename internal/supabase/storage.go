package supabase

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	storage "github.com/supabase-community/storage-go"
)

const listLimit = 1000

type StorageClient struct {
	client *storage.Client
	bucket string

	// storage-go writes per-upload headers into its transport's header map,
	// which every request on that client reads. Uploads get their own client
	// and serialize on uploadMu so sign, list and delete never see them.
	uploads  *storage.Client
	uploadMu sync.Mutex
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	endpoint := baseURL + "/storage/v1"

	return &StorageClient{
		client:  storage.NewClient(endpoint, serviceRoleKey, nil),
		uploads: storage.NewClient(endpoint, serviceRoleKey, nil),
		bucket:  bucket,
	}, nil
}

// ObjectKey returns the bucket key of a project's file: <project>/<file>.
func ObjectKey(projectName, fileName string) string {
	return projectName + "/" + fileName
}

// UploadObject stores data under <project>/<file>, replacing any previous
// object with the same key.
func (s *StorageClient) UploadObject(projectName, fileName string, data []byte, contentType string) (string, error) {
	key := ObjectKey(projectName, fileName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := true

	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	_, err := s.uploads.UploadFile(s.bucket, key, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", key, err)
	}
	return key, nil
}

// SignedURL presigns key for ttl, rounded down to whole seconds.
func (s *StorageClient) SignedURL(key string, ttl time.Duration) (string, error) {
	expiresIn := int(ttl / time.Second)
	if expiresIn <= 0 {
		return "", fmt.Errorf("signed url ttl must be at least one second")
	}
	resp, err := s.client.CreateSignedUrl(s.bucket, key, expiresIn)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", key, err)
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("failed to sign %s: empty signed url", key)
	}
	return resp.SignedURL, nil
}

// ListObjects returns the object names stored under prefix.
func (s *StorageClient) ListObjects(prefix string) ([]string, error) {
	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: listLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names, nil
}

func (s *StorageClient) DeleteObject(projectName, fileName string) error {
	key := ObjectKey(projectName, fileName)
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}
