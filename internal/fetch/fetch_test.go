// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar.gz")
	content := []byte("pretend archive bytes")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	sum := sha256.Sum256(content)

	tests := []struct {
		name    string
		src     Source
		wantErr string
	}{
		{
			name: "no_digest",
			src:  Source{URL: path},
		},
		{
			name: "digest_match",
			src:  Source{URL: path, SHA256: hex.EncodeToString(sum[:])},
		},
		{
			name: "digest_match_uppercase",
			src:  Source{URL: path, SHA256: strings.ToUpper(hex.EncodeToString(sum[:]))},
		},
		{
			name:    "digest_mismatch",
			src:     Source{URL: path, SHA256: "deadbeef"},
			wantErr: "digest mismatch",
		},
		{
			name:    "missing_file",
			src:     Source{URL: filepath.Join(t.TempDir(), "nope.tar.gz")},
			wantErr: "failed to read local archive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Fetch(context.Background(), tt.src)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, content, data)
		})
	}
}

func TestSplitS3URL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{
			name:       "bucket_and_key",
			url:        "s3://releases/zlib/zlib-1.3.1.tar.gz",
			wantBucket: "releases",
			wantKey:    "zlib/zlib-1.3.1.tar.gz",
		},
		{name: "no_key", url: "s3://releases", wantErr: true},
		{name: "empty_key", url: "s3://releases/", wantErr: true},
		{name: "empty_bucket", url: "s3:///key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := splitS3URL(tt.url)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
