// internal/domain/upload/service.go
package upload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/imagecodec"
)

const (
	MsgNoImage     = "No valid image"
	MsgInvalidType = "Please select a JPEG, PNG, WebP, or GIF image"
)

// Service turns an uploaded product image into codec ciphertext
type Service struct {
	codec   *imagecodec.Codec
	maxSize int64
	allowed map[string]bool
	logger  logrus.FieldLogger
}

// NewService creates a new image intake service
func NewService(cfg *config.Config, codec *imagecodec.Codec, logger logrus.FieldLogger) *Service {
	allowed := make(map[string]bool, len(cfg.Upload.AllowedTypes))
	for _, t := range cfg.Upload.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &Service{
		codec:   codec,
		maxSize: cfg.Upload.MaxSize,
		allowed: allowed,
		logger:  logger,
	}
}

// Image is an accepted upload
type Image struct {
	MimeType   string
	Size       int64
	DataURL    string
	Ciphertext string
}

// FromFileHeader reads and encodes a multipart upload
func (s *Service) FromFileHeader(header *multipart.FileHeader) (*Image, error) {
	if header == nil {
		return nil, apperr.Validation("upload.FromFileHeader", MsgNoImage)
	}
	if header.Size > s.maxSize {
		return nil, s.tooLarge("upload.FromFileHeader")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	return s.FromReader(file)
}

// FromReader reads at most the configured size from r, checks the content
// type by sniffing and encodes it.
func (s *Service) FromReader(r io.Reader) (*Image, error) {
	const op = "upload.FromReader"

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apperr.Validation(op, MsgNoImage)
	}
	if int64(len(data)) > s.maxSize {
		return nil, s.tooLarge(op)
	}

	mime := mimetype.Detect(data)
	if !s.accepts(mime) {
		s.logger.WithField("mime_type", mime.String()).Warn("Rejected product image upload")
		return nil, apperr.Validation(op, MsgInvalidType)
	}

	dataURL := ToDataURL(mime.String(), data)
	ciphertext, err := s.codec.Encode(dataURL)
	if err != nil {
		return nil, err
	}

	return &Image{
		MimeType:   mime.String(),
		Size:       int64(len(data)),
		DataURL:    dataURL,
		Ciphertext: ciphertext,
	}, nil
}

// ToDataURL renders data as data:<mime>;base64,<payload>
func ToDataURL(mimeType string, data []byte) string {
	var b bytes.Buffer
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

func (s *Service) accepts(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if s.allowed[m.String()] {
			return true
		}
	}
	return false
}

func (s *Service) tooLarge(op string) error {
	return apperr.Validation(op, fmt.Sprintf("Please select an image smaller than %dMB", s.maxSize>>20))
}
