package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cimillas/pro-portal/services/api/internal/adapter"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/imagecrop"
)

type ImageStore interface {
	Put(ctx context.Context, venueID string, o imagecrop.Original) error
	Get(ctx context.Context, venueID string) (imagecrop.Original, error)
	Delete(ctx context.Context, venueID string) error
}

type ImageUploader interface {
	UploadVenueImage(ctx context.Context, venueID string, img adapter.VenueImage) adapter.Result[string]
}

// VenueService covers the venue side of the portal the wizard relies on:
// the remembered venue and the banner editor.
type VenueService struct {
	prefs    VenuePreferences
	images   ImageStore
	uploader ImageUploader
	logger   *zap.Logger
}

func NewVenueService(prefs VenuePreferences, images ImageStore, uploader ImageUploader, logger *zap.Logger) *VenueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VenueService{prefs: prefs, images: images, uploader: uploader, logger: logger}
}

func (s *VenueService) LastSelected(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrUserRequired
	}
	return s.prefs.LastSelectedVenue(ctx, userID)
}

func (s *VenueService) Select(ctx context.Context, userID, venueID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	if venueID == "" {
		return domain.ErrVenueRequired
	}
	return s.prefs.SetLastSelectedVenue(ctx, userID, venueID)
}

type UploadImageInput struct {
	VenueID string
	// Image may be empty to crop again the original already uploaded.
	Image       []byte
	Filename    string
	ContentType string
	Credit      string
	// Params nil means the whole image.
	Params *imagecrop.CropParams
}

type UploadImageOutput struct {
	BannerURL string               `json:"bannerUrl"`
	Params    imagecrop.CropParams `json:"cropParams"`
	Position  imagecrop.Position   `json:"position"`
	Message   string               `json:"message,omitempty"`
}

// ErrUploadFailed wraps the user-facing message of a rejected upload.
var ErrUploadFailed = errors.New("image upload failed")

// UploadImage stages the original with its crop, then sends the crop to
// the backend.
func (s *VenueService) UploadImage(ctx context.Context, in UploadImageInput) (UploadImageOutput, error) {
	if in.VenueID == "" {
		return UploadImageOutput{}, domain.ErrVenueRequired
	}
	params := imagecrop.DefaultCropParams()
	if in.Params != nil {
		params = *in.Params
	}
	if err := params.Validate(); err != nil {
		return UploadImageOutput{}, err
	}

	original := imagecrop.Original{
		Image:       in.Image,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Credit:      in.Credit,
	}
	if len(in.Image) == 0 {
		staged, err := s.images.Get(ctx, in.VenueID)
		if err != nil {
			if errors.Is(err, domain.ErrImageNotFound) {
				return UploadImageOutput{}, domain.ErrImageRequired
			}
			return UploadImageOutput{}, err
		}
		original = staged
		if in.Credit != "" {
			original.Credit = in.Credit
		}
	}
	original.Params = params

	if err := s.images.Put(ctx, in.VenueID, original); err != nil {
		return UploadImageOutput{}, err
	}

	rect := params.CroppedRect
	res := s.uploader.UploadVenueImage(ctx, in.VenueID, adapter.VenueImage{
		Image:       original.Image,
		Filename:    original.Filename,
		X:           rect.X,
		Y:           rect.Y,
		Width:       rect.Width,
		Height:      rect.Height,
		ImageCredit: original.Credit,
	})
	if !res.IsOk {
		s.logger.Warn("banner upload rejected", zap.String("venue_id", in.VenueID), zap.String("message", res.Message))
		return UploadImageOutput{}, fmt.Errorf("%w: %s", ErrUploadFailed, res.Message)
	}
	return UploadImageOutput{
		BannerURL: res.Payload,
		Params:    params,
		Position:  imagecrop.CroppedRectToPosition(rect),
	}, nil
}

type EditorState struct {
	Params   imagecrop.CropParams `json:"cropParams"`
	Position imagecrop.Position   `json:"position"`
	Credit   string               `json:"credit,omitempty"`
}

// ImageEditorState reopens the editor on the staged original. Without one
// the editor starts from the default crop.
func (s *VenueService) ImageEditorState(ctx context.Context, venueID string) (EditorState, error) {
	o, err := s.images.Get(ctx, venueID)
	if errors.Is(err, domain.ErrImageNotFound) {
		params := imagecrop.DefaultCropParams()
		return EditorState{Params: params, Position: imagecrop.CroppedRectToPosition(params.CroppedRect)}, nil
	}
	if err != nil {
		return EditorState{}, err
	}
	return EditorState{
		Params:   o.Params,
		Position: imagecrop.CroppedRectToPosition(o.Params.CroppedRect),
		Credit:   o.Credit,
	}, nil
}

func (s *VenueService) DiscardImage(ctx context.Context, venueID string) error {
	return s.images.Delete(ctx, venueID)
}
