package render

import (
	"strings"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

// assetURL resolves the supplied URL for one (scene, segment) slot. Full-frame
// slots fall back to the scene's generic full keys so callers can supply one
// image for all full segments of a scene.
func assetURL(request *models.RenderRequest, sceneKey, segmentType string) string {
	if u := request.ImageURL(sceneKey, segmentType); u != "" {
		return u
	}
	switch segmentType {
	case models.SegmentSplitTop, models.SegmentSplitBottom:
		return ""
	}
	if u := request.ImageURL(sceneKey, models.SegmentFullWinner); u != "" {
		return u
	}
	return request.ImageURL(sceneKey, models.SegmentFull)
}

func knownSegmentType(segmentType string) bool {
	switch segmentType {
	case models.SegmentSplitTop, models.SegmentSplitBottom,
		models.SegmentFullWinner, models.SegmentFullScreen, models.SegmentFull:
		return true
	}
	return false
}

// Requirements resolves every (scene, segment) slot that needs a downloaded
// asset, in template order. Fails on the first missing known slot or URL
// policy violation, before any network call. Unknown segment types without an
// asset are skipped; they render best-effort only when an image is supplied.
func Requirements(template *models.Template, request *models.RenderRequest, allowedDomains []string) ([]models.AssetRequirement, error) {
	var reqs []models.AssetRequirement
	seen := make(map[string]bool)

	for _, scene := range template.Scenes {
		sceneKey := scene.Key()
		for _, segment := range scene.Segments {
			slot := sceneKey + "/" + segment.Type
			if seen[slot] {
				continue
			}
			seen[slot] = true

			url := assetURL(request, sceneKey, segment.Type)
			if url == "" {
				if !knownSegmentType(segment.Type) {
					continue
				}
				return nil, errors.AssetFetchf(errors.CodeMissingImage,
					"missing image for %s %s", sceneKey, segment.Type)
			}
			if err := utils.ValidateAssetURL(url, allowedDomains); err != nil {
				return nil, err
			}
			reqs = append(reqs, models.AssetRequirement{
				SceneKey:    sceneKey,
				SegmentType: segment.Type,
				URL:         url,
			})
		}
	}
	return reqs, nil
}

// ValidateRenderRequest is the submission-time check: it collects every
// missing known slot into one validation error and applies URL policy to the
// supplied assets. Nothing is downloaded here.
func ValidateRenderRequest(template *models.Template, request *models.RenderRequest, allowedDomains []string) error {
	var missing []string
	seen := make(map[string]bool)

	for _, scene := range template.Scenes {
		sceneKey := scene.Key()
		for _, segment := range scene.Segments {
			slot := sceneKey + "/" + segment.Type
			if seen[slot] {
				continue
			}
			seen[slot] = true

			url := assetURL(request, sceneKey, segment.Type)
			if url == "" {
				if knownSegmentType(segment.Type) {
					missing = append(missing, sceneKey+"."+segment.Type)
				}
				continue
			}
			if err := utils.ValidateAssetURL(url, allowedDomains); err != nil {
				return err
			}
		}
	}
	if len(missing) > 0 {
		return errors.Validationf(errors.CodeMissingImages,
			"missing images for: %s", strings.Join(missing, ", "))
	}
	return nil
}
