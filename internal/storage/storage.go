// internal/storage/storage.go
// Package storage reads labeled datasets out of the object-storage bucket.
// Layout: <bucket>/<version>/<dataset>/ holding image files plus one
// _annotations.coco.json manifest.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/boxworks/labelhub/internal/appconfig"
)

// ManifestKey is the annotation manifest's file name inside every dataset
// prefix.
const ManifestKey = "_annotations.coco.json"

type objectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store lists dataset prefixes and fetches manifests and image bytes.
type Store struct {
	client objectAPI
	bucket string
}

// New builds a Store from the ambient AWS credential chain.
func New(ctx context.Context, cfg *appconfig.Config) (*Store, error) {
	if cfg.StorageBucket == "" {
		return nil, fmt.Errorf("storage: no bucket configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.StorageRegion))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return &Store{client: s3.NewFromConfig(awsCfg), bucket: cfg.StorageBucket}, nil
}

// NewWithClient wires an explicit client, used by tests.
func NewWithClient(client objectAPI, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// listPrefixes returns the child prefixes one level under prefix, without
// the trailing slash.
func (s *Store) listPrefixes(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	var token *string
	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: list %q: %w", prefix, err)
		}
		for _, p := range resp.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), prefix), "/")
			if name != "" {
				out = append(out, name)
			}
		}
		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		token = resp.NextContinuationToken
	}
	sort.Strings(out)
	return out, nil
}

// Versions lists the top-level dataset version prefixes.
func (s *Store) Versions(ctx context.Context) ([]string, error) {
	return s.listPrefixes(ctx, "")
}

// Datasets lists the dataset prefixes under one version.
func (s *Store) Datasets(ctx context.Context, version string) ([]string, error) {
	return s.listPrefixes(ctx, version+"/")
}

func isImageKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// ImageKeys lists the image object keys inside one dataset prefix.
func (s *Store) ImageKeys(ctx context.Context, version, dataset string) ([]string, error) {
	prefix := version + "/" + dataset + "/"
	var out []string
	var token *string
	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: list %q: %w", prefix, err)
		}
		for _, obj := range resp.Contents {
			if key := aws.ToString(obj.Key); isImageKey(key) {
				out = append(out, key)
			}
		}
		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		token = resp.NextContinuationToken
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) fetch(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: get %q: %w", key, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return data, nil
}

// Manifest fetches the raw annotation manifest for one dataset.
func (s *Store) Manifest(ctx context.Context, version, dataset string) ([]byte, error) {
	return s.fetch(ctx, version+"/"+dataset+"/"+ManifestKey)
}

// ImageBytes fetches one image object.
func (s *Store) ImageBytes(ctx context.Context, key string) ([]byte, error) {
	return s.fetch(ctx, key)
}
