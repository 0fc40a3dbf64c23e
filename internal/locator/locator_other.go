//go:build !windows

package locator

// WebReplay only exists on Windows; other platforms rely on Env alone.
var platform Locator = Func(func() (string, error) {
	return "", ErrNotFound
})
