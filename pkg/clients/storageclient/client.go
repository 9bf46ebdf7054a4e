// Package storageclient is the blob store backed by a Google Cloud Storage bucket
package storageclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"

	"github.com/folkbase/folkbase/pkg/blob"
)

const publicHost = "https://storage.googleapis.com"

type Client struct {
	service *storage.Service
	bucket  string
}

var _ blob.Store = (*Client)(nil)

// NewClient creates a storage client sharing the application's OAuth token
func NewClient(ctx context.Context, oauthConfig *oauth2.Config, token *oauth2.Token, bucket string) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	service, err := storage.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	return &Client{service: service, bucket: bucket}, nil
}

// Upload stores r at path. Large files go up in resumable chunks and report
// progress after each one.
func (c *Client) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64, progress blob.ProgressFunc) (string, error) {
	call := c.service.Objects.Insert(c.bucket, &storage.Object{Name: path, ContentType: contentType}).
		Media(r, googleapi.ContentType(contentType), googleapi.ChunkSize(googleapi.MinUploadChunkSize)).
		Context(ctx)
	if progress != nil {
		call = call.ProgressUpdater(func(current, total int64) {
			if total == 0 {
				total = size
			}
			progress(current, total)
		})
	}

	if _, err := call.Do(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if progress != nil {
		progress(size, size)
	}

	return c.PublicURL(path), nil
}

// Delete removes path. An object that is already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, path string) error {
	err := c.service.Objects.Delete(c.bucket, path).Context(ctx).Do()
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// PublicURL is the download URL of an object in a publicly readable bucket
func (c *Client) PublicURL(path string) string {
	return PublicURL(c.bucket, path)
}

func PublicURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return publicHost + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
