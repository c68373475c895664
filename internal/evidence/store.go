package evidence

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"givetrace/donor-portal/donor-portal-backend/pkg/storage"
)

// ProofStore accepts evidence files and returns stable references. It
// enforces no business rules; the verification gate counts and classifies
// references, not files.
type ProofStore interface {
	Store(ctx context.Context, filename string, content io.Reader) (string, error)
	PresignedURL(ctx context.Context, reference string) (string, error)
}

type s3ProofStore struct {
	client storage.S3Client
	bucket string
}

// NewS3ProofStore creates a proof store backed by an S3 bucket.
func NewS3ProofStore(client storage.S3Client, bucket string) ProofStore {
	return &s3ProofStore{client: client, bucket: bucket}
}

func (s *s3ProofStore) Store(ctx context.Context, filename string, content io.Reader) (string, error) {
	name := sanitize(filename)
	reference := fmt.Sprintf("proofs/%s/%s_%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), name)
	if err := s.client.Upload(ctx, s.bucket, reference, content); err != nil {
		return "", fmt.Errorf("failed to store proof %s: %w", name, err)
	}
	return reference, nil
}

func (s *s3ProofStore) PresignedURL(ctx context.Context, reference string) (string, error) {
	return s.client.GetPresignedURL(ctx, s.bucket, reference, 15*time.Minute)
}

func sanitize(filename string) string {
	name := path.Base(filename)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		name = "proof"
	}
	return name
}

// KindForFilename classifies an uploaded proof by extension. Anything that
// is not an image counts as a document.
func KindForFilename(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return "picture"
	default:
		return "document"
	}
}
