package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Post is the part of a Reddit post the fetcher needs
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
}

type listing struct {
	Data struct {
		Children []struct {
			Data Post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// ParsePost extracts the first post from a listing response. The random
// endpoint answers either with a single listing object or with an array whose
// first element is the listing; both shapes are accepted.
func ParsePost(body []byte) (Post, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Post{}, fmt.Errorf("%w: empty body", errors.ErrInvalidResponse)
	}

	var l listing
	switch trimmed[0] {
	case '[':
		var listings []listing
		if err := json.Unmarshal(trimmed, &listings); err != nil {
			return Post{}, fmt.Errorf("%w: %v", errors.ErrInvalidResponse, err)
		}
		if len(listings) == 0 {
			return Post{}, fmt.Errorf("%w: empty listing array", errors.ErrInvalidResponse)
		}
		l = listings[0]
	case '{':
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return Post{}, fmt.Errorf("%w: %v", errors.ErrInvalidResponse, err)
		}
	default:
		return Post{}, fmt.Errorf("%w: unexpected response format", errors.ErrInvalidResponse)
	}

	if len(l.Data.Children) == 0 {
		return Post{}, fmt.Errorf("%w: listing has no posts", errors.ErrInvalidResponse)
	}
	post := l.Data.Children[0].Data
	if strings.TrimSpace(post.URL) == "" {
		return Post{}, fmt.Errorf("%w: post has no url", errors.ErrInvalidResponse)
	}
	return post, nil
}

// ResolveImageURL returns a URL that points directly at an image. URLs whose
// path ends in a known image extension pass unchanged; extension-less URLs on a
// shortener host get ".jpg" appended; anything else is errors.ErrNotDirectImage.
func ResolveImageURL(raw string, shortenerHosts []string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrNotDirectImage, raw)
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if slices.Contains(constants.DirectImageExtensions, ext) {
		return u.String(), nil
	}

	if ext == "" && isShortenerHost(u.Hostname(), shortenerHosts) {
		u.Path += ".jpg"
		return u.String(), nil
	}

	return "", fmt.Errorf("%w: %s", errors.ErrNotDirectImage, raw)
}

func isShortenerHost(host string, shortenerHosts []string) bool {
	host = strings.ToLower(host)
	for _, s := range shortenerHosts {
		s = strings.ToLower(s)
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}
