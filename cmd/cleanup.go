package cmd

import (
	"fmt"
)

// CleanImages is kept for command-line compatibility. It never deletes files.
func (m *Manager) CleanImages() error {
	images, err := m.pool.List()
	if err != nil {
		return err
	}
	m.logger.Info("Image cleanup requested, nothing removed", "images", len(images))
	fmt.Fprintf(m.out, "Image cleanup is not available; %d images left in %s\n", len(images), m.cfg.ImageFolder)
	return nil
}
