// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	awsx "github.com/patchctl/patchctl/internal/aws"
	"github.com/patchctl/patchctl/internal/log"
)

// fetchS3 downloads s3://bucket/key using the ambient credential chain
// (AWS_PROFILE, shared config, env, IMDS). Region comes from the chain too;
// S3 will redirect if it disagrees, which the SDK follows.
func fetchS3(ctx context.Context, url string) ([]byte, error) {
	bucket, key, err := splitS3URL(url)
	if err != nil {
		return nil, err
	}

	cfg, err := awsx.LoadAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awsx.NewS3(cfg)
	out, err := client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer out.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	log.Debugf("s3 object fetched: bucket=%s key=%s bytes=%d", bucket, key, len(data))
	return data, nil
}

func splitS3URL(url string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(url, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed S3 URL %q: want s3://bucket/key", url)
	}
	return bucket, key, nil
}
