package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
)

type failingStorage struct{}

func (failingStorage) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unavailable")
}
func (failingStorage) Backend() string { return "failing" }

func newLocalUploader(t *testing.T) (*Uploader, string) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080")
	require.NoError(t, err)
	return NewUploader(store), dir
}

func TestUploader_StoresPDF(t *testing.T) {
	up, dir := newLocalUploader(t)

	resp, err := up.Upload(context.Background(), "postcards", "spring.pdf", bytes.NewReader(pdfBytes), PostcardPolicy)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.FileID)
	assert.Equal(t, "spring.pdf", resp.Name)
	assert.Equal(t, "/postcards/"+resp.FileID+".pdf", resp.FilePath)
	assert.Equal(t, "http://localhost:8080/uploads/postcards/"+resp.FileID+".pdf", resp.URL)
	assert.Empty(t, resp.ThumbnailURL)

	stored, err := os.ReadFile(filepath.Join(dir, "postcards", resp.FileID+".pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, stored)
}

func TestUploader_ImageGetsThumbnail(t *testing.T) {
	up, _ := newLocalUploader(t)

	resp, err := up.Upload(context.Background(), "profiles", "C:\\photos\\me.png", bytes.NewReader(pngBytes), GeneralPolicy)
	require.NoError(t, err)
	assert.Equal(t, "me.png", resp.Name)
	assert.Equal(t, resp.URL, resp.ThumbnailURL)
	assert.True(t, strings.HasSuffix(resp.FilePath, ".png"))
}

func TestUploader_Rejections(t *testing.T) {
	up, _ := newLocalUploader(t)
	ctx := context.Background()

	_, err := up.Upload(ctx, "secrets", "a.pdf", bytes.NewReader(pdfBytes), GeneralPolicy)
	assert.True(t, domain.IsValidation(err), "unknown folder")

	_, err = up.Upload(ctx, "postcards", "a.png", bytes.NewReader(pngBytes), PostcardPolicy)
	assert.True(t, domain.IsValidation(err), "postcards accept PDF only")

	_, err = up.Upload(ctx, "general", "notes.txt", strings.NewReader("just some text"), GeneralPolicy)
	assert.True(t, domain.IsValidation(err), "plain text is not allowed")

	_, err = up.Upload(ctx, "general", "empty.pdf", bytes.NewReader(nil), GeneralPolicy)
	assert.True(t, domain.IsValidation(err), "empty file")

	small := Policy{AllowedTypes: []string{"application/pdf"}, MaxSize: 16}
	_, err = up.Upload(ctx, "general", "big.pdf", bytes.NewReader(pdfBytes), small)
	assert.Equal(t, domain.ErrCodePayloadTooLarge, domain.GetErrorCode(err))
}

func TestUploader_StorageFailure(t *testing.T) {
	up := NewUploader(failingStorage{})

	_, err := up.Upload(context.Background(), "general", "a.pdf", bytes.NewReader(pdfBytes), GeneralPolicy)
	assert.ErrorContains(t, err, "bucket unavailable")
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.pdf", pdfBytes, "application/pdf")
	assert.Error(t, err)
}

func TestDefaultPublicURL(t *testing.T) {
	assert.Equal(t, "https://cards.s3.us-east-1.amazonaws.com", defaultPublicURL(S3Config{Bucket: "cards", Region: "us-east-1"}))
	assert.Equal(t, "http://minio:9000/cards", defaultPublicURL(S3Config{Bucket: "cards", Endpoint: "http://minio:9000/"}))
}
