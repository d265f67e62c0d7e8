package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// DefaultCloudinaryFolder is the folder item photos are uploaded into.
const DefaultCloudinaryFolder = "lost_found_items"

// CloudinaryConfig holds the account credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary uploads images to a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary creates an uploader from account credentials.
func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	folder := cfg.Folder
	if folder == "" {
		folder = DefaultCloudinaryFolder
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Save uploads data and returns its public id and secure URL.
func (c *Cloudinary) Save(ctx context.Context, data []byte, _ string) (Object, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID: uuid.NewString(),
		Folder:   c.folder,
	})
	if err != nil {
		return Object{}, fmt.Errorf("uploading to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return Object{}, fmt.Errorf("uploading to cloudinary: %s", resp.Error.Message)
	}
	return Object{Key: resp.PublicID, URL: resp.SecureURL}, nil
}

// Delete destroys an uploaded image by public id.
func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty public id", ErrInvalidKey)
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("deleting from cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("deleting from cloudinary: %s", resp.Error.Message)
	}
	return nil
}
