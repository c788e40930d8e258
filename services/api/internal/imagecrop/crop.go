// Package imagecrop holds the crop geometry of venue banners and the store
// keeping originals so the editor can be reopened.
package imagecrop

import (
	"fmt"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

// Rect is the kept part of the image. Values are ratios of the original
// size, X and Y being the top left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type CropParams struct {
	CroppedRect Rect    `json:"croppedRect"`
	Scale       float64 `json:"scale"`
}

// DefaultCropParams keeps the whole image at its natural scale.
func DefaultCropParams() CropParams {
	return CropParams{CroppedRect: Rect{Width: 1, Height: 1}, Scale: 1}
}

// Position is the centre of the crop, as the editor expects it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func CroppedRectToPosition(r Rect) Position {
	return Position{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

const epsilon = 1e-9

func (p CropParams) Validate() error {
	r := p.CroppedRect
	switch {
	case p.Scale < 1:
		return fmt.Errorf("%w: scale %v below 1", domain.ErrInvalidCrop, p.Scale)
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("%w: empty rectangle", domain.ErrInvalidCrop)
	case r.X < 0 || r.Y < 0:
		return fmt.Errorf("%w: negative origin", domain.ErrInvalidCrop)
	case r.X+r.Width > 1+epsilon || r.Y+r.Height > 1+epsilon:
		return fmt.Errorf("%w: rectangle outside the image", domain.ErrInvalidCrop)
	}
	return nil
}
