//go:build !windows

package platform

import (
	"fmt"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

type nativeDesktop struct{}

func (nativeDesktop) SetWallpaper(string) error {
	return fmt.Errorf("%w: user32 is only available on windows", errors.ErrUnsupportedPlatform)
}

func (nativeDesktop) Wallpaper() (string, error) {
	return "", fmt.Errorf("%w: registry is only available on windows", errors.ErrUnsupportedPlatform)
}
