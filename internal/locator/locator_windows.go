//go:build windows

package locator

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

// registryKeys are tried in order; the AppDataLow key is where current
// WebReplay versions write.
var registryKeys = []string{
	`Software\AppDataLow\Deskperience\WebReplay`,
	`Software\Deskperience\WebReplay`,
}

const registryValue = "StorageCurrentPath"

var platform Locator = Func(registryDir)

func registryDir() (string, error) {
	for _, path := range registryKeys {
		dir, err := readValue(path)
		if errors.Is(err, registry.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if dir != "" {
			return dir, nil
		}
	}
	return "", ErrNotFound
}

func readValue(path string) (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(registryValue)
	return v, err
}
