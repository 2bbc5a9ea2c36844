package upload

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/imagecodec"
	"github.com/your-org/brewflow-storefront/internal/pkg/logger"
)

// smallest valid PNG: 1x1 transparent pixel
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

var gifPixel = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func newTestService(maxSize int64) *Service {
	cfg := &config.Config{Upload: config.UploadConfig{
		MaxSize:      maxSize,
		AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"},
	}}
	codec := imagecodec.New(imagecodec.Options{Passphrase: "test"})
	return NewService(cfg, codec, logger.Discard())
}

func TestFromReaderEncodesImage(t *testing.T) {
	svc := newTestService(5 << 20)

	img, err := svc.FromReader(bytes.NewReader(pngPixel))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, ToDataURL("image/png", pngPixel), img.DataURL)

	decoded, ok := svc.codec.Decode(img.Ciphertext)
	require.True(t, ok)
	assert.Equal(t, img.DataURL, decoded)
}

func TestFromReaderAcceptsGIF(t *testing.T) {
	img, err := newTestService(5 << 20).FromReader(bytes.NewReader(gifPixel))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", img.MimeType)
}

func TestFromReaderRejects(t *testing.T) {
	svc := newTestService(64)

	_, err := svc.FromReader(bytes.NewReader(nil))
	assert.Equal(t, MsgNoImage, apperr.MessageOf(err))

	_, err = svc.FromReader(bytes.NewReader([]byte("%PDF-1.4 not an image")))
	assert.Equal(t, MsgInvalidType, apperr.MessageOf(err))

	_, err = svc.FromReader(bytes.NewReader(bytes.Repeat([]byte{0x89}, 65)))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, apperr.MessageOf(err), "smaller than")
}

func TestFromFileHeader(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "pixel.png")
	require.NoError(t, err)
	_, err = part.Write(pngPixel)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, header, err := req.FormFile("image")
	require.NoError(t, err)

	img, err := newTestService(5 << 20).FromFileHeader(header)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngPixel)), img.Size)

	_, err = newTestService(5 << 20).FromFileHeader(nil)
	assert.Equal(t, MsgNoImage, apperr.MessageOf(err))
}
