package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// objectName matches the names produced by NewFilename.
var objectName = regexp.MustCompile(`^[a-f0-9]{32}(\.[a-z0-9]{1,8})?$`)

// GCSStore keeps files in a Google Cloud Storage bucket. The object name is the file id.
type GCSStore struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// ClientOptionsFromEnv reads service-account credentials from
// GOOGLE_APPLICATION_CREDENTIALS_JSON (inline) or GOOGLE_APPLICATION_CREDENTIALS (path).
// With neither set, application default credentials apply.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// NewGCSStore opens bucketName with credentials from the environment.
func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, errors.New("missing GCS bucket name")
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucketName)}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) object(id string) (*gcs.ObjectHandle, error) {
	if !objectName.MatchString(id) {
		return nil, ErrInvalidID
	}
	return s.bucket.Object(id), nil
}

func fileFromAttrs(a *gcs.ObjectAttrs) *model.File {
	meta := fileMetadata{
		OriginalName: a.Metadata["originalName"],
		UploadedBy:   a.Metadata["uploadedBy"],
	}
	return &model.File{
		ID:           a.Name,
		Filename:     a.Name,
		OriginalName: meta.OriginalName,
		ContentType:  a.ContentType,
		Size:         a.Size,
		UploadedBy:   meta.uploader(),
		UploadDate:   a.Created,
	}
}

// Put streams r into a new object named after in.Filename.
func (s *GCSStore) Put(ctx context.Context, in PutInput, r io.Reader) (*model.File, error) {
	obj, err := s.object(in.Filename)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := obj.NewWriter(ctx)
	w.ContentType = in.ContentType
	w.Metadata = map[string]string{
		"originalName": in.OriginalName,
		"uploadedBy":   in.UploadedBy.String(),
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close object writer: %w", err)
	}
	return fileFromAttrs(w.Attrs()), nil
}

// Open returns the object's metadata and a reader over its content.
func (s *GCSStore) Open(ctx context.Context, id string) (*model.File, io.ReadCloser, error) {
	f, err := s.Stat(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, _ := s.object(id)
	rc, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open object: %w", err)
	}
	return f, rc, nil
}

// Stat returns the object's metadata.
func (s *GCSStore) Stat(ctx context.Context, id string) (*model.File, error) {
	obj, err := s.object(id)
	if err != nil {
		return nil, err
	}
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("object attrs: %w", err)
	}
	return fileFromAttrs(attrs), nil
}

// Delete removes the object.
func (s *GCSStore) Delete(ctx context.Context, id string) error {
	obj, err := s.object(id)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// List walks the bucket and pages over the matching objects, newest first.
func (s *GCSStore) List(ctx context.Context, f model.FileFilter) ([]model.File, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var matched []model.File
	it := s.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("list objects: %w", err)
		}
		file := fileFromAttrs(attrs)
		if matchesFilter(*file, f) {
			matched = append(matched, *file)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UploadDate.After(matched[j].UploadDate)
	})

	total := len(matched)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Limit()
	if end > total {
		end = total
	}
	return append([]model.File{}, matched[start:end]...), total, nil
}
