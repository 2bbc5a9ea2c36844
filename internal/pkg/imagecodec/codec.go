// Package imagecodec encrypts product image payloads for transport and
// decrypts them for display.
//
// Ciphertext uses the OpenSSL "Salted__" envelope that CryptoJS produces for
// passphrase encryption:
//
//	base64( "Salted__" | salt[8] | AES-256-CBC(PKCS#7, plaintext) )
//
// Key and IV come from the passphrase and salt, either through EVP_BytesToKey
// with MD5 (the CryptoJS default, and what existing product images use) or
// through PBKDF2-HMAC-SHA256. The passphrase is shared by every client, so the
// cipher hides images from casual inspection only.
package imagecodec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"golang.org/x/crypto/pbkdf2"
)

// KDF names a key derivation scheme
type KDF string

const (
	KDFEVP    KDF = "evp"
	KDFPBKDF2 KDF = "pbkdf2"
)

const (
	saltHeader = "Salted__"
	saltSize   = 8
	keySize    = 32
	ivSize     = aes.BlockSize

	DefaultPBKDF2Iterations = 10000
)

var (
	errNotSalted  = errors.New("missing Salted__ header")
	errBadLength  = errors.New("ciphertext is not a whole number of blocks")
	errBadPadding = errors.New("invalid PKCS#7 padding")
	errNotText    = errors.New("plaintext is not valid UTF-8")
)

// Options configures a Codec
type Options struct {
	Passphrase       string
	KDF              KDF
	PBKDF2Iterations int
	PlaceholderImage string
	Logger           logrus.FieldLogger
	Rand             io.Reader // salt source, crypto/rand when nil
}

// Codec converts between image data URLs and ciphertext strings
type Codec struct {
	passphrase  []byte
	kdf         KDF
	iterations  int
	placeholder string
	logger      logrus.FieldLogger
	rand        io.Reader
}

// New creates a codec
func New(opts Options) *Codec {
	if opts.KDF == "" {
		opts.KDF = KDFEVP
	}
	if opts.PBKDF2Iterations <= 0 {
		opts.PBKDF2Iterations = DefaultPBKDF2Iterations
	}
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		opts.Logger = logger
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}

	return &Codec{
		passphrase:  []byte(opts.Passphrase),
		kdf:         opts.KDF,
		iterations:  opts.PBKDF2Iterations,
		placeholder: opts.PlaceholderImage,
		logger:      opts.Logger,
		rand:        opts.Rand,
	}
}

// NewFromConfig creates the codec described by the configuration
func NewFromConfig(cfg *config.Config, logger logrus.FieldLogger) *Codec {
	return New(Options{
		Passphrase:       cfg.Codec.Passphrase,
		KDF:              KDF(cfg.Codec.KDF),
		PBKDF2Iterations: cfg.Codec.PBKDF2Iterations,
		PlaceholderImage: cfg.Codec.PlaceholderImage,
		Logger:           logger,
	})
}

// Encode encrypts a data URL (data:<mime>;base64,<payload>). A fresh random
// salt is used for every call.
func (c *Codec) Encode(dataURL string) (string, error) {
	if !IsDataURL(dataURL) {
		return "", apperr.Validation("imagecodec.Encode", "image must be a base64 data URL")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, iv := c.derive(c.kdf, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := pad([]byte(dataURL), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	envelope := make([]byte, 0, len(saltHeader)+saltSize+len(ciphertext))
	envelope = append(envelope, saltHeader...)
	envelope = append(envelope, salt...)
	envelope = append(envelope, ciphertext...)

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decode decrypts ciphertext produced by Encode. It never fails loudly: any
// problem returns ok=false and the caller shows a placeholder instead.
func (c *Codec) Decode(ciphertext string) (plaintext string, ok bool) {
	out, err := c.decode(ciphertext, c.kdf)
	if err != nil && c.kdf != KDFEVP {
		// images stored before switching derivation still use EVP
		out, err = c.decode(ciphertext, KDFEVP)
	}
	if err != nil {
		c.logger.WithError(err).Debug("Failed to decrypt image")
		return "", false
	}
	return out, true
}

// Resolve returns something displayable for a product's image field: the
// decrypted data URL, a plain http(s) URL as-is, or the placeholder.
func (c *Codec) Resolve(image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return c.placeholder
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	if decoded, ok := c.Decode(image); ok {
		return decoded
	}
	return c.placeholder
}

// IsDataURL reports whether s looks like data:<mime>;base64,<payload>
func IsDataURL(s string) bool {
	if !strings.HasPrefix(s, "data:") {
		return false
	}
	idx := strings.Index(s, ";base64,")
	return idx >= len("data:") && idx+len(";base64,") < len(s)
}

func (c *Codec) decode(ciphertext string, kdf KDF) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}

	if len(raw) < len(saltHeader)+saltSize || !bytes.Equal(raw[:len(saltHeader)], []byte(saltHeader)) {
		return "", errNotSalted
	}

	salt := raw[len(saltHeader) : len(saltHeader)+saltSize]
	body := raw[len(saltHeader)+saltSize:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return "", errBadLength
	}

	key, iv := c.derive(kdf, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)

	out, err = unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if len(out) == 0 || !utf8.Valid(out) {
		return "", errNotText
	}
	return string(out), nil
}

func (c *Codec) derive(kdf KDF, salt []byte) (key, iv []byte) {
	var material []byte
	if kdf == KDFPBKDF2 {
		material = pbkdf2.Key(c.passphrase, salt, c.iterations, keySize+ivSize, sha256.New)
	} else {
		material = evpBytesToKey(c.passphrase, salt, keySize+ivSize)
	}
	return material[:keySize], material[keySize:]
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and one iteration
func evpBytesToKey(passphrase, salt []byte, size int) []byte {
	var (
		out  []byte
		prev []byte
	)
	for len(out) < size {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		out = append(out, prev...)
	}
	return out[:size]
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}
