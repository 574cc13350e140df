// Package storage implements the payment-receipt blob store on the local
// filesystem. Stored files are served back under /receipts/ by the HTTP
// server, so Put returns a public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ReceiptStore writes receipt uploads under a base directory.
type ReceiptStore struct {
	dir     string
	baseURL string
}

// NewReceiptStore creates the receipts directory if needed.
func NewReceiptStore(dir, baseURL string) (*ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt dir: %w", err)
	}
	return &ReceiptStore{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the directory receipts are written to.
func (s *ReceiptStore) Dir() string {
	return s.dir
}

// Put stores the upload under a fresh uuid name and returns its public URL.
// The extension comes from the original filename, falling back to the content
// type.
func (s *ReceiptStore) Put(ctx context.Context, data io.Reader, contentType, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("write receipt file: %w", err)
	}

	return s.baseURL + "/receipts/" + name, nil
}
