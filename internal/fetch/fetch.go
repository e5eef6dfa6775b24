// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/patchctl/patchctl/internal/cacheutil"
	"github.com/patchctl/patchctl/internal/log"
)

// Source describes where a baseline archive comes from and, optionally, the
// SHA-256 digest it must match.
type Source struct {
	URL    string
	SHA256 string
}

// cacheSubdir is where fetched archives land beneath the cache base.
const cacheSubdir = "archives"

// httpTimeout bounds a single archive download.
const httpTimeout = 5 * time.Minute

// Fetch retrieves the archive bytes for src. Supported schemes: https://,
// http://, s3://, and bare local file paths. Remote fetches are cached; the
// cache key is the URL itself. Digest verification, when requested, runs on
// every path including cache hits.
func Fetch(ctx context.Context, src Source) ([]byte, error) {
	var data []byte
	var err error

	switch {
	case strings.HasPrefix(src.URL, "http://"), strings.HasPrefix(src.URL, "https://"):
		data, err = fetchCached(src.URL, func() ([]byte, error) { return fetchHTTP(ctx, src.URL) })
	case strings.HasPrefix(src.URL, "s3://"):
		data, err = fetchCached(src.URL, func() ([]byte, error) { return fetchS3(ctx, src.URL) })
	default:
		data, err = os.ReadFile(src.URL)
		if err != nil {
			err = fmt.Errorf("failed to read local archive: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	if src.SHA256 != "" {
		sum := sha256.Sum256(data)
		got := hex.EncodeToString(sum[:])
		if !strings.EqualFold(got, src.SHA256) {
			return nil, fmt.Errorf("archive digest mismatch for %s: want %s, got %s", src.URL, src.SHA256, got)
		}
	}

	log.Infof("fetched %s (%s)", src.URL, humanize.Bytes(uint64(len(data))))
	return data, nil
}

// fetchCached consults the archive cache before invoking the real fetch, and
// stores the result on a miss. Cache failures degrade to a plain fetch.
func fetchCached(url string, fetch func() ([]byte, error)) ([]byte, error) {
	if entry, ok := cacheutil.Read([]string{cacheSubdir}, url); ok {
		return entry.Data, nil
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	if err := cacheutil.Write([]string{cacheSubdir}, url, data); err != nil {
		log.WithError(err).Warnf("failed to cache %s", url)
	}
	return data, nil
}

func fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	return data, nil
}
