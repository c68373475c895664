package evidence

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct{ mock.Mock }

func (m *mockS3) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	return m.Called(ctx, bucket, key, body).Error(0)
}

func (m *mockS3) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockS3) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

func (m *mockS3) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiration)
	return args.String(0), args.Error(1)
}

func TestStoreReturnsStableReference(t *testing.T) {
	client := new(mockS3)
	store := NewS3ProofStore(client, "proof-bucket")

	client.On("Upload", mock.Anything, "proof-bucket", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "proofs/")
	}), mock.Anything).Return(nil)

	ref, err := store.Store(context.Background(), "site photo.jpg", strings.NewReader("fake"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "proofs/"))
	assert.True(t, strings.HasSuffix(ref, "site_photo.jpg"))
	client.AssertExpectations(t)
}

func TestStoreWrapsUploadError(t *testing.T) {
	client := new(mockS3)
	store := NewS3ProofStore(client, "proof-bucket")

	client.On("Upload", mock.Anything, "proof-bucket", mock.Anything, mock.Anything).
		Return(errors.New("bucket unreachable"))

	_, err := store.Store(context.Background(), "doc.pdf", strings.NewReader("fake"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc.pdf")
}

func TestKindForFilename(t *testing.T) {
	assert.Equal(t, "picture", KindForFilename("IMG_0001.JPG"))
	assert.Equal(t, "picture", KindForFilename("a/b/site.png"))
	assert.Equal(t, "document", KindForFilename("invoice.pdf"))
	assert.Equal(t, "document", KindForFilename("notes"))
}
