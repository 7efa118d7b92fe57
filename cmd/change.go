package cmd

import (
	"context"
	"fmt"
)

// ChangeNow shows the next image of the rotation
func (m *Manager) ChangeNow(ctx context.Context) error {
	m.captureDefault(ctx)

	record, err := m.changer.ChangeWallpaper(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Wallpaper set to %s\n", record.Path)
	return nil
}
