package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/PolarWolf314/refuge/internal/logging"
	"github.com/PolarWolf314/refuge/internal/utils"

	"github.com/bmatcuk/doublestar/v4"
)

const fileSuffix = ".bin"

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Sealer transforms payloads on their way to and from disk.
type Sealer interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(payload []byte) ([]byte, error)
}

type Cache struct {
	dir    string
	sealer Sealer
	log    logger.Logger
}

func New(dir string, sealer Sealer, log logger.Logger) *Cache {
	return &Cache{dir: dir, sealer: sealer, log: log}
}

func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid cache entry name %q", name)
	}
	return filepath.Join(c.dir, name+fileSuffix), nil
}

// Put seals data and writes it under name.
func (c *Cache) Put(name string, data []byte) error {
	path, err := c.path(name)
	if err != nil {
		return err
	}

	sealed, err := c.sealer.Encrypt(data)
	if err != nil {
		return fmt.Errorf("sealing cache entry: %w", err)
	}

	if err := utils.WriteFileAtomic(path, sealed, 0600); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	c.log.Debugf("Cached %d bytes as %s", len(data), name)
	return nil
}

// Get returns the opened payload stored under name.
func (c *Cache) Get(name string) ([]byte, bool, error) {
	path, err := c.path(name)
	if err != nil {
		return nil, false, err
	}

	sealed, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	data, err := c.sealer.Decrypt(sealed)
	if err != nil {
		return nil, false, fmt.Errorf("opening cache entry %s: %w", name, err)
	}
	return data, true, nil
}

// Delete securely removes a single entry.
func (c *Cache) Delete(name string) error {
	path, err := c.path(name)
	if err != nil {
		return err
	}
	if err := utils.ShredFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Names lists stored entry names.
func (c *Cache) Names() ([]string, error) {
	if _, err := os.Stat(c.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(c.dir), "*"+fileSuffix, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[:len(m)-len(fileSuffix)])
	}
	return names, nil
}

// Purge overwrites and removes every file under the cache directory, then
// the directory itself. It keeps going after a failure and returns every
// error it met.
func (c *Cache) Purge() error {
	if _, err := os.Stat(c.dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(c.dir), "**", doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return fmt.Errorf("failed to enumerate cache: %w", err)
	}

	var errs []error
	for _, m := range matches {
		if err := utils.ShredFile(filepath.Join(c.dir, filepath.FromSlash(m))); err != nil {
			errs = append(errs, err)
		}
	}

	if err := os.RemoveAll(c.dir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove cache directory: %w", err))
	}

	c.log.Debugf("Purged %d cache files", len(matches))
	return errors.Join(errs...)
}
