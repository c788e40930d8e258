package imagecrop

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

// Original is an uploaded banner before cropping, with the last crop
// applied to it.
type Original struct {
	Image       []byte
	Filename    string
	ContentType string
	Credit      string
	Params      CropParams
}

type originalMeta struct {
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Credit      string     `json:"credit,omitempty"`
	Params      CropParams `json:"cropParams"`
}

// Store keeps one original per venue in a bucket:
// {prefix}venues/{id}/original and {prefix}venues/{id}/original.json.
type Store struct {
	bucket *blob.Bucket
	prefix string
}

// OpenStore opens the bucket behind a gocloud URL such as mem:// or
// file:///var/lib/pro-portal/images.
func OpenStore(ctx context.Context, bucketURL, prefix string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open image bucket: %w", err)
	}
	return NewStore(bucket, prefix), nil
}

func NewStore(bucket *blob.Bucket, prefix string) *Store {
	return &Store{bucket: bucket, prefix: prefix}
}

func (s *Store) Put(ctx context.Context, venueID string, o Original) error {
	if err := checkVenueID(venueID); err != nil {
		return err
	}
	if len(o.Image) == 0 {
		return domain.ErrImageRequired
	}
	imageKey, metaKey := s.keysFor(venueID)

	opts := &blob.WriterOptions{ContentType: o.ContentType}
	if err := s.bucket.WriteAll(ctx, imageKey, o.Image, opts); err != nil {
		return fmt.Errorf("write original: %w", err)
	}
	meta, err := json.Marshal(originalMeta{
		Filename:    o.Filename,
		ContentType: o.ContentType,
		Credit:      o.Credit,
		Params:      o.Params,
	})
	if err != nil {
		return fmt.Errorf("encode crop params: %w", err)
	}
	if err := s.bucket.WriteAll(ctx, metaKey, meta, nil); err != nil {
		return fmt.Errorf("write crop params: %w", err)
	}
	return nil
}

// Get returns domain.ErrImageNotFound when the venue has no original.
func (s *Store) Get(ctx context.Context, venueID string) (Original, error) {
	if err := checkVenueID(venueID); err != nil {
		return Original{}, err
	}
	imageKey, metaKey := s.keysFor(venueID)

	img, err := s.bucket.ReadAll(ctx, imageKey)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return Original{}, domain.ErrImageNotFound
		}
		return Original{}, fmt.Errorf("read original: %w", err)
	}
	o := Original{Image: img, Params: DefaultCropParams()}

	data, err := s.bucket.ReadAll(ctx, metaKey)
	switch {
	case gcerrors.Code(err) == gcerrors.NotFound:
		return o, nil
	case err != nil:
		return Original{}, fmt.Errorf("read crop params: %w", err)
	}
	var meta originalMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Original{}, fmt.Errorf("decode crop params: %w", err)
	}
	o.Filename = meta.Filename
	o.ContentType = meta.ContentType
	o.Credit = meta.Credit
	o.Params = meta.Params
	return o, nil
}

func (s *Store) Delete(ctx context.Context, venueID string) error {
	if err := checkVenueID(venueID); err != nil {
		return err
	}
	imageKey, metaKey := s.keysFor(venueID)
	for _, key := range []string{imageKey, metaKey} {
		if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.bucket.Close()
}

func (s *Store) keysFor(venueID string) (image, meta string) {
	image = s.prefix + path.Join("venues", venueID, "original")
	return image, image + ".json"
}

func checkVenueID(id string) error {
	switch {
	case id == "":
		return domain.ErrVenueRequired
	case id == "." || id == ".." || strings.ContainsAny(id, "/\\"):
		return domain.ErrInvalidID
	}
	return nil
}
