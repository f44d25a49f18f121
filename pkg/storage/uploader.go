package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/models"
)

// MaxUploadSize is the largest accepted file
const MaxUploadSize = 10 << 20

// Folders accepted by the generic upload endpoint
var Folders = []string{"postcards", "profiles", "general"}

// Policy restricts what an upload may contain
type Policy struct {
	AllowedTypes []string
	MaxSize      int64
}

var (
	// GeneralPolicy accepts common images and PDFs
	GeneralPolicy = Policy{
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/svg+xml", "application/pdf"},
		MaxSize:      MaxUploadSize,
	}
	// PostcardPolicy accepts only PDFs
	PostcardPolicy = Policy{
		AllowedTypes: []string{"application/pdf"},
		MaxSize:      MaxUploadSize,
	}
)

// Uploader validates files and writes them to a Storage
type Uploader struct {
	store Storage
}

// NewUploader creates an uploader writing to store
func NewUploader(store Storage) *Uploader {
	return &Uploader{store: store}
}

// Backend names the underlying storage
func (u *Uploader) Backend() string {
	return u.store.Backend()
}

// Upload reads at most policy.MaxSize bytes from r, sniffs the real content
// type and stores the file under folder/<uuid><ext>.
func (u *Uploader) Upload(ctx context.Context, folder, fileName string, r io.Reader, policy Policy) (*models.UploadResponse, error) {
	if !validFolder(folder) {
		return nil, domain.NewValidationError(fmt.Sprintf("folder must be one of: %s", strings.Join(Folders, ", ")))
	}

	body, err := io.ReadAll(io.LimitReader(r, policy.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(body) == 0 {
		return nil, domain.NewValidationError("File is empty")
	}
	if int64(len(body)) > policy.MaxSize {
		return nil, domain.NewPayloadTooLargeError(fmt.Sprintf("File exceeds the %d MB limit", policy.MaxSize>>20))
	}

	mtype := mimetype.Detect(body)
	contentType, ok := allowedType(mtype, policy.AllowedTypes)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("File type %s is not allowed", mtype.String()))
	}

	fileID := uuid.NewString()
	key := folder + "/" + fileID + mtype.Extension()

	url, err := u.store.Put(ctx, key, body, contentType)
	if err != nil {
		return nil, err
	}

	resp := &models.UploadResponse{
		URL:      url,
		FileID:   fileID,
		Name:     displayName(fileName, fileID+mtype.Extension()),
		FilePath: "/" + key,
	}
	if strings.HasPrefix(contentType, "image/") {
		resp.ThumbnailURL = url
	}
	return resp, nil
}

func validFolder(folder string) bool {
	for _, f := range Folders {
		if f == folder {
			return true
		}
	}
	return false
}

func allowedType(m *mimetype.MIME, allowed []string) (string, bool) {
	for _, t := range allowed {
		if m.Is(t) {
			return t, true
		}
	}
	return "", false
}

func displayName(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
