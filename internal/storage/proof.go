package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxProofSize is the bucket's per-object ceiling.
	MaxProofSize int64 = 5 << 20
	// ProofPrefix is where payment proofs live inside the bucket.
	ProofPrefix = "payment-proofs/"
)

var (
	ErrInvalidType = errors.New("invalid file type")
	ErrTooLarge    = errors.New("file too large")
	ErrStorage     = errors.New("storage error")
)

// ObjectStore is the "store bytes, get back a URL" contract.
// Satisfied by *MinioStore; narrow interface for testability.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// File is an uploaded payment proof as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ProofUploader validates and stores payment proofs.
type ProofUploader struct {
	store   ObjectStore
	maxSize int64
}

func NewProofUploader(store ObjectStore) *ProofUploader {
	return &ProofUploader{store: store, maxSize: MaxProofSize}
}

// Upload stores f under a fresh random key and returns its public URL. The
// client's file name is never used for the key.
func (u *ProofUploader) Upload(ctx context.Context, f File) (string, error) {
	if f.Size > u.maxSize {
		return "", tooLarge(f.Size, u.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(f.Reader, u.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read proof: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return "", tooLarge(int64(len(data)), u.maxSize)
	}

	ct := mediaType(f.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = mediaType(mimetype.Detect(data).String())
	}
	if !allowedType(ct) {
		return "", fmt.Errorf("%w: %s (images and PDF only)", ErrInvalidType, ct)
	}

	key := ProofPrefix + uuid.NewString() + extension(ct)
	url, err := u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), ct)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, nil
}

func tooLarge(size, limit int64) error {
	return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
}

func mediaType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

func allowedType(ct string) bool {
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

func extension(ct string) string {
	if m := mimetype.Lookup(ct); m != nil {
		return m.Extension()
	}
	return ""
}
