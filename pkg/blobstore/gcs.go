package blobstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultContentType is applied when the caller does not know the image type.
const DefaultContentType = "image/jpeg"

// Client stores and retrieves product images in a GCS bucket.
type Client struct {
	gcs    *storage.Client
	bucket string
}

// NewGCSClient creates the underlying storage client. If credsPath is empty,
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func New(gcs *storage.Client, bucket string) *Client {
	return &Client{gcs: gcs, bucket: bucket}
}

// ObjectName assigns a globally unique name for an upload: a random id plus
// the original file extension. Content is never deduplicated.
func ObjectName(originalFilename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalFilename))
}

// Upload writes the stream into the bucket under name and returns the
// object's public URL.
func (c *Client) Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error) {
	if c.gcs == nil || c.bucket == "" {
		return "", fmt.Errorf("blob storage not configured")
	}
	if contentType == "" {
		contentType = DefaultContentType
	}
	wc := c.gcs.Bucket(c.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return c.PublicURL(name), nil
}

// ListAll returns the public URLs of every object in the bucket.
func (c *Client) ListAll(ctx context.Context) ([]string, error) {
	if c.gcs == nil || c.bucket == "" {
		return nil, fmt.Errorf("blob storage not configured")
	}
	urls := make([]string, 0)
	it := c.gcs.Bucket(c.bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		urls = append(urls, c.PublicURL(attrs.Name))
	}
	return urls, nil
}

// Delete removes the object the public URL points at.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	if c.gcs == nil || c.bucket == "" {
		return fmt.Errorf("blob storage not configured")
	}
	name, err := c.objectFromURL(publicURL)
	if err != nil {
		return err
	}
	return c.gcs.Bucket(c.bucket).Object(name).Delete(ctx)
}

// PublicURL builds a public URL for an object (assuming public read access).
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucket, name)
}

func (c *Client) objectFromURL(publicURL string) (string, error) {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", c.bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return "", fmt.Errorf("url %q is not in bucket %s", publicURL, c.bucket)
	}
	name := strings.TrimPrefix(publicURL, prefix)
	if name == "" {
		return "", fmt.Errorf("url %q has no object name", publicURL)
	}
	return name, nil
}
