// Package storage keeps post attachments on local disk, one directory per owner.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ChunkSize bounds how much of an upload is held in memory at once.
const ChunkSize = 32 << 10

const tmpSuffix = ".part"

var (
	ErrInvalidContentType = errors.New("invalid content type")
	ErrStorageWrite       = errors.New("attachment write failed")
	ErrNotFound           = errors.New("attachment not found")
)

var attachmentBytesWritten = promauto.NewCounter(prometheus.CounterOpts{
	Name: "newsfeed_attachment_bytes_written_total",
	Help: "Total bytes of attachment content written to disk.",
})

type AttachmentStore struct {
	root string
}

// BlobInfo describes one stored attachment.
type BlobInfo struct {
	Location string
	ModTime  time.Time
}

// NewAttachmentStore creates the root directory if it does not exist yet.
func NewAttachmentStore(root string) (*AttachmentStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &AttachmentStore{root: root}, nil
}

func (s *AttachmentStore) Root() string {
	return s.root
}

// Put streams content into <root>/<ownerID>/<uuid><ext> and returns the
// location relative to root along with the media class taken from contentType.
// The content becomes visible under its final name only once fully synced.
func (s *AttachmentStore) Put(ctx context.Context, content io.Reader, ownerID, filename, contentType string) (string, string, error) {
	mediaClass, err := MediaClass(contentType)
	if err != nil {
		return "", "", err
	}
	if !validNamespace(ownerID) {
		return "", "", fmt.Errorf("%w: invalid owner namespace %q", ErrStorageWrite, ownerID)
	}
	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	dir := filepath.Join(s.root, ownerID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", "", fmt.Errorf("%w: create namespace %s: %v", ErrStorageWrite, ownerID, err)
	}

	ext := filepath.Ext(filename)
	if strings.ContainsAny(ext, `\`+"\x00") {
		ext = ""
	}
	name := uuid.New().String() + ext
	fullPath := filepath.Join(dir, name)
	tmpPath := fullPath + tmpSuffix

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", "", fmt.Errorf("%w: create %s: %v", ErrStorageWrite, name, err)
	}

	n, err := copyChunks(ctx, f, content)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("%w: write %s: %v", ErrStorageWrite, name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("%w: sync %s: %v", ErrStorageWrite, name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("%w: close %s: %v", ErrStorageWrite, name, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("%w: rename %s: %v", ErrStorageWrite, name, err)
	}

	attachmentBytesWritten.Add(float64(n))
	return path.Join(ownerID, name), mediaClass, nil
}

// Get reads the whole attachment at location.
func (s *AttachmentStore) Get(ctx context.Context, location string) ([]byte, error) {
	fullPath, ok := s.resolve(location)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, location, err)
	}
	return data, nil
}

// Delete removes the attachment. A missing attachment is not an error.
func (s *AttachmentStore) Delete(ctx context.Context, location string) error {
	fullPath, ok := s.resolve(location)
	if !ok {
		return nil
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete attachment %s: %w", location, err)
	}
	return nil
}

// List walks every owner namespace. In-flight uploads are skipped.
func (s *AttachmentStore) List(ctx context.Context) ([]BlobInfo, error) {
	var blobs []BlobInfo
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), tmpSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Printf("[STORAGE] Skipping %s: %v", p, err)
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		blobs = append(blobs, BlobInfo{Location: filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return blobs, nil
}

// resolve maps a location onto disk, refusing anything that is not exactly
// <namespace>/<name> inside root.
func (s *AttachmentStore) resolve(location string) (string, bool) {
	if location == "" || path.IsAbs(location) || strings.Contains(location, "\\") {
		return "", false
	}
	clean := path.Clean(location)
	if clean != location {
		return "", false
	}
	owner, name, ok := strings.Cut(clean, "/")
	if !ok || !validNamespace(owner) || !validNamespace(name) {
		return "", false
	}
	return filepath.Join(s.root, owner, name), true
}

// MediaClass returns the top-level type of a MIME type, e.g. "image" for "image/png".
func MediaClass(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return "", fmt.Errorf("%w: missing", ErrInvalidContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}
	class, sub, ok := strings.Cut(mediaType, "/")
	if !ok || class == "" || sub == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}
	return class, nil
}

func validNamespace(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`+"\x00")
}

// copyChunks copies src to dst one ChunkSize read at a time, checking ctx
// between chunks.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
