package loader

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Source identifies one version of the input file.
type Source struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Hash    string    `json:"hash"` // hex BLAKE2b-256 of the file bytes
}

// Key identifies the file content. Identical bytes at different paths or
// with a touched modification time share a key.
func (s Source) Key() string {
	return "blake2b-256:" + s.Hash
}

// sameStat reports whether path's size and modification time still match s.
func (s Source) sameStat(info os.FileInfo) bool {
	return s.Size == info.Size() && s.ModTime.Equal(info.ModTime())
}

// Identify stats and hashes the file at path.
func Identify(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("resolving path: %w", err)
	}

	f, info, err := openRegular(abs)
	if err != nil {
		return Source{}, err
	}
	defer f.Close()

	h, err := newHash()
	if err != nil {
		return Source{}, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return Source{}, fmt.Errorf("hashing %s: %w", abs, err)
	}

	return Source{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Hash:    hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// openRegular opens path and stats the opened file, rejecting directories.
func openRegular(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}
	return f, info, nil
}

func newHash() (hash.Hash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("creating hash: %w", err)
	}
	return h, nil
}
