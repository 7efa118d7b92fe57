package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// History prints the most recent wallpaper changes
func (m *Manager) History(ctx context.Context, limit int) error {
	entries, err := m.history.History(ctx, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(m.out, "No wallpaper history found.")
		fmt.Fprintln(m.out, "Use --change-now or --start to set a wallpaper first!")
		return nil
	}

	fmt.Fprintf(m.out, "\nWallpaper History (last %d)\n", len(entries))
	fmt.Fprintln(m.out, strings.Repeat("=", 80))

	for i, e := range entries {
		status := "ok"
		if !e.Success {
			status = "FAILED"
		}
		fmt.Fprintf(m.out, "%d. %s  %-6s  %s\n", i+1, e.UsedAt.Local().Format("2006-01-02 15:04:05"), status, filepath.Base(e.Path))
		if e.Resolution != "" {
			fmt.Fprintf(m.out, "   Resolution: %s\n", e.Resolution)
		}
	}
	fmt.Fprintln(m.out)
	return nil
}
