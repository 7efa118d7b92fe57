package reddit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
)

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

// fakeReddit serves random.json for every subreddit with a post pointing at postPath.
type fakeReddit struct {
	mu        sync.Mutex
	server    *httptest.Server
	postPath  string
	arrayForm bool
	requests  []string
	agents    []string
}

func newFakeReddit(t *testing.T, postPath string) *fakeReddit {
	t.Helper()
	fr := &fakeReddit{postPath: postPath}

	mux := http.NewServeMux()
	mux.HandleFunc("/r/{sub}/random.json", func(w http.ResponseWriter, r *http.Request) {
		fr.record(r)
		body := fmt.Sprintf(`{"data":{"children":[{"data":{"id":"p1","subreddit":%q,"url":%q,"score":42}}]}}`,
			r.PathValue("sub"), fr.server.URL+fr.postPath)
		if fr.arrayForm {
			body = "[" + body + "]"
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	})
	mux.HandleFunc("/img/a.jpg", func(w http.ResponseWriter, r *http.Request) {
		fr.record(r)
		w.Write(jpegBytes)
	})
	mux.HandleFunc("/pic.jpg", func(w http.ResponseWriter, r *http.Request) {
		fr.record(r)
		w.Write(jpegBytes)
	})
	mux.HandleFunc("/page.jpg", func(w http.ResponseWriter, r *http.Request) {
		fr.record(r)
		io.WriteString(w, "<html>removed</html>")
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		fr.record(r)
		io.WriteString(w, "plain text")
	})

	fr.server = httptest.NewServer(mux)
	t.Cleanup(fr.server.Close)
	return fr
}

func (fr *fakeReddit) record(r *http.Request) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.requests = append(fr.requests, r.URL.Path)
	fr.agents = append(fr.agents, r.UserAgent())
}

func (fr *fakeReddit) host(t *testing.T) string {
	u, err := url.Parse(fr.server.URL)
	require.NoError(t, err)
	return u.Hostname()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(t *testing.T, fr *fakeReddit, subreddits ...string) (*Fetcher, *pool.Store) {
	t.Helper()
	store := pool.NewStore(filepath.Join(t.TempDir(), "images"), discardLogger())
	client := NewClient("test-agent/1.0", discardLogger(), WithBaseURL(fr.server.URL))
	f := NewFetcher(client, store, subreddits, discardLogger(),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithShortenerHosts([]string{fr.host(t)}),
	)
	return f, store
}

func TestFetcher_FetchObjectShape(t *testing.T) {
	fr := newFakeReddit(t, "/img/a.jpg")
	f, store := newTestFetcher(t, fr, "EarthPorn")

	record, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "EarthPorn", record.Subreddit)
	assert.Equal(t, 42, record.Score)
	assert.FileExists(t, record.Path)
	assert.Equal(t, []string{"/r/EarthPorn/random.json", "/img/a.jpg"}, fr.requests)
	assert.Equal(t, []string{"test-agent/1.0", "test-agent/1.0"}, fr.agents)

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetcher_FetchArrayShape(t *testing.T) {
	fr := newFakeReddit(t, "/img/a.jpg")
	fr.arrayForm = true
	f, _ := newTestFetcher(t, fr, "SpacePorn")

	record, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SpacePorn", record.Subreddit)
}

func TestFetcher_ShortenerGetsJpgSuffix(t *testing.T) {
	fr := newFakeReddit(t, "/pic")
	f, _ := newTestFetcher(t, fr, "Art")

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/pic.jpg", fr.requests[len(fr.requests)-1])
}

func TestFetcher_NotDirectImageWritesNothing(t *testing.T) {
	fr := newFakeReddit(t, "/notes.txt")
	f, store := newTestFetcher(t, fr, "Art")

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotDirectImage))
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))

	var fe *errors.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Art", fe.Subreddit)

	assert.Equal(t, []string{"/r/Art/random.json"}, fr.requests, "no download must be attempted")
	records, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetcher_NonImagePayloadWritesNothing(t *testing.T) {
	fr := newFakeReddit(t, "/page.jpg")
	f, store := newTestFetcher(t, fr, "Art")

	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNotImage))

	records, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetcher_HTTPErrorIsFetchFailure(t *testing.T) {
	fr := newFakeReddit(t, "/missing.jpg")
	f, _ := newTestFetcher(t, fr, "Art")

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	assert.True(t, errors.Is(err, errors.ErrAPIRequest))

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestFetcher_NoSubreddits(t *testing.T) {
	fr := newFakeReddit(t, "/img/a.jpg")
	f, _ := newTestFetcher(t, fr)

	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	assert.Empty(t, fr.requests)
}

func TestFetcher_FetchBatch(t *testing.T) {
	fr := newFakeReddit(t, "/img/a.jpg")
	f, store := newTestFetcher(t, fr, "EarthPorn", "CityPorn")

	records := f.FetchBatch(context.Background(), 3)
	assert.Len(t, records, 3)

	listed, err := store.List()
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestFetcher_FetchBatchSkipsFailures(t *testing.T) {
	fr := newFakeReddit(t, "/notes.txt")
	f, _ := newTestFetcher(t, fr, "Art")

	records := f.FetchBatch(context.Background(), 4)
	assert.Empty(t, records)
	assert.Len(t, fr.requests, 4, "every attempt is made despite failures")
}

func TestFetcher_FetchBatchStopsOnCancel(t *testing.T) {
	fr := newFakeReddit(t, "/img/a.jpg")
	f, _ := newTestFetcher(t, fr, "Art")
	f.limiter = rate.NewLimiter(rate.Every(1<<40), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := f.FetchBatch(ctx, 5)
	assert.Empty(t, records)
}
