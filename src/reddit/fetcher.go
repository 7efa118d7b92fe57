package reddit

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/time/rate"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
)

// ImageWriter persists downloaded image bytes
type ImageWriter interface {
	Write(data []byte, subreddit string) (pool.ImageRecord, error)
}

// Fetcher downloads images from random posts of the configured subreddits
type Fetcher struct {
	client     *Client
	pool       ImageWriter
	subreddits []string
	shorteners []string
	limiter    *rate.Limiter
	rnd        *rand.Rand
	logger     *slog.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithLimiter paces the requests of FetchBatch
func WithLimiter(l *rate.Limiter) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithRand sets the random source used to pick subreddits
func WithRand(r *rand.Rand) FetcherOption {
	return func(f *Fetcher) {
		f.rnd = r
	}
}

// WithShortenerHosts replaces the hosts that get ".jpg" appended to bare links
func WithShortenerHosts(hosts []string) FetcherOption {
	return func(f *Fetcher) {
		f.shorteners = hosts
	}
}

// NewFetcher creates a fetcher writing into p
func NewFetcher(client *Client, p ImageWriter, subreddits []string, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:     client,
		pool:       p,
		subreddits: subreddits,
		shorteners: constants.ShortenerHosts,
		limiter:    rate.NewLimiter(rate.Every(constants.BatchRequestEvery), 1),
		rnd:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch makes one attempt: pick a subreddit, take its random post, download the
// image and store it. Any failure comes back as *errors.FetchError naming the
// subreddit; nothing is written in that case.
func (f *Fetcher) Fetch(ctx context.Context) (pool.ImageRecord, error) {
	if len(f.subreddits) == 0 {
		return pool.ImageRecord{}, fmt.Errorf("%w: no subreddits configured", errors.ErrFetchFailed)
	}
	subreddit := f.subreddits[f.rnd.IntN(len(f.subreddits))]

	post, err := f.client.RandomPost(ctx, subreddit)
	if err != nil {
		return pool.ImageRecord{}, errors.NewFetchError(subreddit, err)
	}

	imageURL, err := ResolveImageURL(post.URL, f.shorteners)
	if err != nil {
		return pool.ImageRecord{}, errors.NewFetchError(subreddit, err)
	}

	data, err := f.client.Download(ctx, imageURL)
	if err != nil {
		return pool.ImageRecord{}, errors.NewFetchError(subreddit, err)
	}

	record, err := f.pool.Write(data, subreddit)
	if err != nil {
		return pool.ImageRecord{}, errors.NewFetchError(subreddit, err)
	}
	record.Score = post.Score

	f.logger.Info("Downloaded image", "path", record.Path, "subreddit", subreddit, "score", post.Score)
	return record, nil
}

// FetchBatch calls Fetch count times in sequence and returns the successes.
// Failed attempts are logged and skipped; a short batch is not an error.
func (f *Fetcher) FetchBatch(ctx context.Context, count int) []pool.ImageRecord {
	var records []pool.ImageRecord
	for i := 0; i < count; i++ {
		if err := f.limiter.Wait(ctx); err != nil {
			f.logger.Warn("Batch download interrupted", "error", err, "completed", len(records))
			break
		}

		record, err := f.Fetch(ctx)
		if err != nil {
			f.logger.Error("Fetch attempt failed", "attempt", i+1, "error", err)
			continue
		}
		records = append(records, record)
	}

	f.logger.Info("Batch download finished", "requested", count, "downloaded", len(records))
	return records
}
