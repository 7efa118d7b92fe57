package changer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/history"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
)

type fakeSetter struct {
	current string
	setErr  error
	sets    []string
}

func (f *fakeSetter) Set(_ context.Context, path string) error {
	f.sets = append(f.sets, path)
	if f.setErr != nil {
		return f.setErr
	}
	f.current = path
	return nil
}

func (f *fakeSetter) Current(context.Context) (string, error) {
	return f.current, nil
}

type fakeSelector struct {
	records  []pool.ImageRecord
	released []string
}

func (f *fakeSelector) SelectNext(context.Context) (pool.ImageRecord, error) {
	if len(f.records) == 0 {
		return pool.ImageRecord{}, errors.ErrPoolEmpty
	}
	r := f.records[0]
	f.records = f.records[1:]
	return r, nil
}

func (f *fakeSelector) Release(_ context.Context, record pool.ImageRecord) error {
	f.released = append(f.released, record.ID)
	return nil
}

type fakeFetcher struct {
	record pool.ImageRecord
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(context.Context) (pool.ImageRecord, error) {
	f.calls++
	return f.record, f.err
}

func (f *fakeFetcher) FetchBatch(ctx context.Context, count int) []pool.ImageRecord {
	var out []pool.ImageRecord
	for i := 0; i < count; i++ {
		if r, err := f.Fetch(ctx); err == nil {
			out = append(out, r)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.NewStore(filepath.Join(t.TempDir(), "wallpapers.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestApply_Success(t *testing.T) {
	setter := &fakeSetter{current: "/orig.jpg"}
	hist := newHistory(t)
	c := NewChanger(&fakeSelector{}, nil, setter, hist, testLogger())

	assert.True(t, c.Apply(context.Background(), "/pool/a.jpg"))
	assert.Equal(t, "/pool/a.jpg", setter.current)

	entries, err := hist.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
}

func TestApply_CommandFailure(t *testing.T) {
	setter := &fakeSetter{current: "/orig.jpg", setErr: errors.New("gsettings: exit status 1")}
	hist := newHistory(t)
	var buf bytes.Buffer
	c := NewChanger(&fakeSelector{}, nil, setter, hist, slog.New(slog.NewTextHandler(&buf, nil)))

	assert.False(t, c.Apply(context.Background(), "/pool/a.jpg"))
	assert.Equal(t, "/orig.jpg", setter.current, "prior wallpaper must remain")

	logged := buf.String()
	assert.Contains(t, logged, "level=ERROR")
	assert.Contains(t, logged, `msg="Failed to set wallpaper"`)
	assert.Contains(t, logged, "path=/pool/a.jpg")
	assert.Contains(t, logged, "gsettings: exit status 1")

	entries, err := hist.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "/pool/a.jpg", entries[0].Path)
}

func TestChangeWallpaper(t *testing.T) {
	setter := &fakeSetter{}
	sel := &fakeSelector{records: []pool.ImageRecord{{ID: "a.jpg", Path: "/pool/a.jpg"}}}
	c := NewChanger(sel, &fakeFetcher{}, setter, newHistory(t), testLogger())

	record, err := c.ChangeWallpaper(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", record.ID)
	assert.Equal(t, []string{"/pool/a.jpg"}, setter.sets)
}

func TestChangeWallpaper_ApplyFailure(t *testing.T) {
	setter := &fakeSetter{setErr: errors.New("osascript failed")}
	sel := &fakeSelector{records: []pool.ImageRecord{{ID: "a.jpg", Path: "/pool/a.jpg"}}}
	c := NewChanger(sel, nil, setter, newHistory(t), testLogger())

	_, err := c.ChangeWallpaper(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrApplyFailed))
	assert.Equal(t, constants.ExitApplyFailure, errors.ExitCode(err))
	assert.Equal(t, []string{"a.jpg"}, sel.released, "an image that was never shown keeps its turn")
}

func TestChangeWallpaper_SuccessKeepsImageUsed(t *testing.T) {
	sel := &fakeSelector{records: []pool.ImageRecord{{ID: "a.jpg", Path: "/pool/a.jpg"}}}
	c := NewChanger(sel, nil, &fakeSetter{}, newHistory(t), testLogger())

	_, err := c.ChangeWallpaper(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sel.released)
}

func TestChangeWallpaper_EmptyPoolFetches(t *testing.T) {
	setter := &fakeSetter{}
	fetcher := &fakeFetcher{record: pool.ImageRecord{ID: "new.jpg", Path: "/pool/new.jpg"}}
	c := NewChanger(&fakeSelector{}, fetcher, setter, newHistory(t), testLogger())

	record, err := c.ChangeWallpaper(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new.jpg", record.ID)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "/pool/new.jpg", setter.current)
}

func TestChangeWallpaper_EmptyPoolFetchFails(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.NewFetchError("EarthPorn", errors.ErrNotDirectImage)}
	setter := &fakeSetter{}
	c := NewChanger(&fakeSelector{}, fetcher, setter, newHistory(t), testLogger())

	_, err := c.ChangeWallpaper(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPoolEmpty))
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	assert.Equal(t, constants.ExitFetchFailure, errors.ExitCode(err))
	assert.Empty(t, setter.sets)
}

func TestChangeWallpaper_EmptyPoolWithoutFetcher(t *testing.T) {
	c := NewChanger(&fakeSelector{}, nil, &fakeSetter{}, newHistory(t), testLogger())

	_, err := c.ChangeWallpaper(context.Background())
	assert.True(t, errors.Is(err, errors.ErrPoolEmpty))
}

func TestCaptureAndRestoreDefault(t *testing.T) {
	ctx := context.Background()
	setter := &fakeSetter{current: "/orig.jpg"}
	hist := newHistory(t)
	c := NewChanger(&fakeSelector{}, nil, setter, hist, testLogger())

	path, err := c.CaptureDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/orig.jpg", path)

	require.True(t, c.Apply(ctx, "/pool/a.jpg"))

	// a later run sees our image but keeps the original
	path, err = c.CaptureDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/orig.jpg", path)

	require.NoError(t, c.RestoreDefault(ctx))
	assert.Equal(t, "/orig.jpg", setter.current)

	_, ok, err := hist.DefaultWallpaper(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "default is forgotten after restore")
}

func TestRestoreDefault_NothingCaptured(t *testing.T) {
	setter := &fakeSetter{current: "/pool/a.jpg"}
	c := NewChanger(&fakeSelector{}, nil, setter, newHistory(t), testLogger())

	require.NoError(t, c.RestoreDefault(context.Background()))
	assert.Empty(t, setter.sets)
}

func TestRestoreDefault_ApplyFailureKeepsDefault(t *testing.T) {
	ctx := context.Background()
	setter := &fakeSetter{current: "/orig.jpg"}
	hist := newHistory(t)
	c := NewChanger(&fakeSelector{}, nil, setter, hist, testLogger())

	_, err := c.CaptureDefault(ctx)
	require.NoError(t, err)

	setter.setErr = errors.New("dbus unavailable")
	err = c.RestoreDefault(ctx)
	assert.True(t, errors.Is(err, errors.ErrApplyFailed))

	path, ok, err := hist.DefaultWallpaper(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/orig.jpg", path)
}
