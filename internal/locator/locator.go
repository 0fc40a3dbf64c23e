// Package locator finds the WebReplay store when the caller does not name
// one.
//
// WebReplay records its storage directory per user. On Windows that is the
// StorageCurrentPath value under HKCU\Software\AppDataLow\Deskperience\WebReplay
// (HKCU\Software\Deskperience\WebReplay on installs that predate the low
// integrity hive). Elsewhere, and as an override everywhere, the directory
// comes from $WEBREPLAY_STORAGE_PATH.
package locator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// StoreFileName is the store file inside the storage directory.
const StoreFileName = "WR.sdf"

// EnvStorageDir overrides the storage directory on every platform.
const EnvStorageDir = "WEBREPLAY_STORAGE_PATH"

// ErrNotFound is returned when no storage directory is configured.
var ErrNotFound = errors.New("WebReplay storage directory not found")

// Locator resolves the default store file.
type Locator interface {
	// Locate returns the full path of the store file, or ErrNotFound.
	Locate() (string, error)
}

// Func adapts a function returning a storage directory to a Locator.
type Func func() (string, error)

// Locate implements Locator.
func (f Func) Locate() (string, error) {
	dir, err := f()
	if err != nil {
		return "", err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", ErrNotFound
	}
	return filepath.Join(dir, StoreFileName), nil
}

// Chain tries each locator in order and returns the first hit.
type Chain []Locator

// Locate implements Locator.
func (c Chain) Locate() (string, error) {
	for _, l := range c {
		path, err := l.Locate()
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}

// Env looks the storage directory up in $WEBREPLAY_STORAGE_PATH.
var Env = Func(func() (string, error) {
	return os.Getenv(EnvStorageDir), nil
})

// Default returns the platform's locator: the environment override first,
// then the platform lookup.
func Default() Locator {
	return Chain{Env, platform}
}
