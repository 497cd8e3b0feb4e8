package application

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/pkg/blobstore"
)

// ImageService stores product images in the shared blob bucket. Objects get
// random names so uploads never collide or overwrite each other.
type ImageService struct {
	Blobs  *blobstore.Client
	Logger *logrus.Logger
}

func NewImageService(blobs *blobstore.Client, logger *logrus.Logger) *ImageService {
	return &ImageService{Blobs: blobs, Logger: logger}
}

// Upload streams one image into the bucket and returns its public URL.
func (s *ImageService) Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	name := blobstore.ObjectName(filename)
	url, err := s.Blobs.Upload(ctx, r, name, contentType)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", name).Error("image upload failed")
		}
		return "", err
	}
	return url, nil
}

// List returns the public URLs of every stored image.
func (s *ImageService) List(ctx context.Context) ([]string, error) {
	return s.Blobs.ListAll(ctx)
}

// Delete removes the image the public URL points at.
func (s *ImageService) Delete(ctx context.Context, publicURL string) error {
	return s.Blobs.Delete(ctx, publicURL)
}
