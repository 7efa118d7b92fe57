// Package pool provides the on-disk collection of downloaded wallpapers
package pool

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// ImageRecord describes one downloaded image in the pool
type ImageRecord struct {
	ID        string `json:"id"` // file name, unique within the pool
	Subreddit string `json:"subreddit"`
	Path      string `json:"path"`
	Score     int    `json:"score,omitempty"`
}

// Store is a folder of wallpaper images. It keeps no index; every call reads the folder.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

// Dir returns the image folder
func (s *Store) Dir() string {
	return s.dir
}

// EnsureFolder creates the image folder if it does not exist
func (s *Store) EnsureFolder() error {
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return fmt.Errorf("%w: create image folder: %v", errors.ErrFileOperation, err)
	}
	return nil
}

// List returns the images currently in the folder, sorted by name.
// A missing folder is an empty pool.
func (s *Store) List() ([]ImageRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read image folder: %v", errors.ErrFileOperation, err)
	}

	records := make([]ImageRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !IsImageFile(name) {
			continue
		}
		records = append(records, ImageRecord{
			ID:        name,
			Subreddit: SubredditFromName(name),
			Path:      filepath.Join(s.dir, name),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Write stores data as a new pool image named <subreddit>_<ordinal>_<hash><ext>.
// The ordinal is the pool size plus one and the hash is taken from the content,
// so two writers racing on the same ordinal still produce distinct names.
func (s *Store) Write(data []byte, subreddit string) (ImageRecord, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return ImageRecord{}, fmt.Errorf("%w: detected %s", errors.ErrNotImage, mtype.String())
	}

	ext := extensionFor(mtype)
	if !slices.Contains(constants.PoolImageExtensions, ext) {
		return ImageRecord{}, fmt.Errorf("%w: unsupported format %s", errors.ErrNotImage, mtype.String())
	}

	if err := s.EnsureFolder(); err != nil {
		return ImageRecord{}, err
	}

	existing, err := s.List()
	if err != nil {
		return ImageRecord{}, err
	}

	name := fmt.Sprintf("%s_%d_%s%s", subreddit, len(existing)+1, contentHash(data), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("%w: create %s: %v", errors.ErrFileOperation, name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return ImageRecord{}, fmt.Errorf("%w: write %s: %v", errors.ErrFileOperation, name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return ImageRecord{}, fmt.Errorf("%w: close %s: %v", errors.ErrFileOperation, name, err)
	}

	s.logger.Debug("Stored image", "path", path, "bytes", len(data), "mime", mtype.String())
	return ImageRecord{ID: name, Subreddit: subreddit, Path: path}, nil
}

// IsImageFile reports whether name carries a pool image extension
func IsImageFile(name string) bool {
	return slices.Contains(constants.PoolImageExtensions, strings.ToLower(filepath.Ext(name)))
}

// SubredditFromName recovers the subreddit tag from a generated file name.
// Names that were not generated by Write yield "".
func SubredditFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	hashSep := strings.LastIndex(base, "_")
	if hashSep <= 0 {
		return ""
	}
	rest := base[:hashSep]
	ordSep := strings.LastIndex(rest, "_")
	if ordSep <= 0 {
		return ""
	}
	if _, err := strconv.Atoi(rest[ordSep+1:]); err != nil {
		return ""
	}
	return rest[:ordSep]
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:8]
}

func extensionFor(mtype *mimetype.MIME) string {
	ext := mtype.Extension()
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}
