// Package media stores listing photos on Cloudinary.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/disintegration/imaging"
)

var ErrNotConfigured = errors.New("media uploads are not configured")

type Uploader interface {
	// Upload stores an already normalised JPEG and returns its public URL.
	Upload(ctx context.Context, r io.Reader, folder, publicID string) (string, error)
	Delete(ctx context.Context, photoURL string) error
}

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, folder, publicID string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:    folder,
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, photoURL string) error {
	publicID, err := PublicIDFromURL(photoURL)
	if err != nil {
		return err
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, resp.Error.Message)
	}
	return nil
}

// Disabled is used when no media host is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return nil }

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL extracts the asset id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/venues/venue_12_1.jpg
// (venues/venue_12_1).
func PublicIDFromURL(photoURL string) (string, error) {
	u, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if versionSegment.MatchString(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}

	return "", fmt.Errorf("no public id in %q", photoURL)
}

// Normalize decodes an uploaded image, applies EXIF orientation, downsizes
// it to at most maxWidth pixels wide and re-encodes it as JPEG.
func Normalize(r io.Reader, maxWidth int) (*bytes.Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &buf, nil
}
