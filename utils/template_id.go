package utils

import (
	"fmt"
	"strings"

	"wavewall-mockups/models"
)

// ParseTemplateID parses a template id following the naming convention
// PRODUCTTYPE-COLOR-ANGLE[-VARIANT], e.g. "tshirt-black-front" or
// "canvas-lifestyle". The directory scanner uses it to backfill criteria
// fields that hand-authored metadata files leave empty.
func ParseTemplateID(id string) (*models.TemplateCriteria, error) {
	parts := strings.Split(strings.ToLower(id), "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid template id %q: expected at least PRODUCTTYPE-ANGLE", id)
	}

	pt, ok := parseProductType(parts[0])
	if !ok {
		return nil, fmt.Errorf("invalid template id %q: unknown product type %q", id, parts[0])
	}

	criteria := &models.TemplateCriteria{ProductType: pt}

	// The remaining parts are COLOR then ANGLE; color is optional, so a
	// two-part id is PRODUCTTYPE-ANGLE.
	rest := parts[1:]
	if angle, ok := parseAngle(rest[len(rest)-1]); ok {
		criteria.Angle = angle
		rest = rest[:len(rest)-1]
	}
	if len(rest) > 0 {
		criteria.Color = rest[0]
	}

	return criteria, nil
}

func parseProductType(s string) (models.ProductType, bool) {
	switch models.ProductType(s) {
	case models.ProductTShirt, models.ProductHoodie, models.ProductMug,
		models.ProductPoster, models.ProductCanvas, models.ProductFramed:
		return models.ProductType(s), true
	}
	return "", false
}

func parseAngle(s string) (models.Angle, bool) {
	switch models.Angle(s) {
	case models.AngleFront, models.AngleBack, models.AngleSide,
		models.AngleFlat, models.AngleLifestyle:
		return models.Angle(s), true
	}
	return "", false
}
