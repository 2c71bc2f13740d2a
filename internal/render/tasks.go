package render

import (
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
)

// BuildRenderTasks turns the template's scenes into independent per-scene
// tasks with resolved local asset paths. Composition rules:
//
//   - split_top pairs with the scene's split_bottom into one stacked clip,
//     using the split_top duration. A lone half, or a second pair in the same
//     scene, is rejected.
//   - full_winner, full_screen and full render the asset full-frame with the
//     scene's custom text, when present.
//   - an unknown segment type renders full-frame when an asset was supplied
//     and is skipped otherwise.
func BuildRenderTasks(template *models.Template, assets map[string]map[string]string, customText map[string]string) ([]models.RenderTask, error) {
	var tasks []models.RenderTask

	for _, scene := range template.Scenes {
		sceneKey := scene.Key()
		sceneAssets := assets[sceneKey]
		overlay := customText[sceneKey]

		var units []models.RenderUnit
		seenTop := false
		seenBottom := false
		hasTop := false
		hasBottom := false
		for _, segment := range scene.Segments {
			switch segment.Type {
			case models.SegmentSplitTop:
				hasTop = true
			case models.SegmentSplitBottom:
				hasBottom = true
			}
		}

		for _, segment := range scene.Segments {
			switch segment.Type {
			case models.SegmentSplitTop:
				if seenTop {
					return nil, errors.Validationf(errors.CodeInvalidTemplate,
						"%s declares more than one split_top segment", sceneKey)
				}
				seenTop = true
				if !hasBottom {
					return nil, errors.Validationf(errors.CodeInvalidTemplate,
						"%s has a split_top segment without a split_bottom partner", sceneKey)
				}
				top := sceneAssets[models.SegmentSplitTop]
				bottom := sceneAssets[models.SegmentSplitBottom]
				if top == "" || bottom == "" {
					return nil, errors.AssetFetchf(errors.CodeMissingImage,
						"no assets available for %s split pair", sceneKey)
				}
				units = append(units, models.RenderUnit{
					Kind:        models.UnitSplitPair,
					TopAsset:    top,
					BottomAsset: bottom,
					Duration:    segment.Duration,
				})

			case models.SegmentSplitBottom:
				if seenBottom {
					return nil, errors.Validationf(errors.CodeInvalidTemplate,
						"%s declares more than one split_bottom segment", sceneKey)
				}
				seenBottom = true
				if !hasTop {
					return nil, errors.Validationf(errors.CodeInvalidTemplate,
						"%s has a split_bottom segment without a split_top partner", sceneKey)
				}
				// Consumed by the split_top pairing above.

			case models.SegmentFullWinner, models.SegmentFullScreen, models.SegmentFull:
				asset := fullFrameAsset(sceneAssets, segment.Type)
				if asset == "" {
					return nil, errors.AssetFetchf(errors.CodeMissingImage,
						"no asset available for %s %s", sceneKey, segment.Type)
				}
				units = append(units, models.RenderUnit{
					Kind:        models.UnitFullFrame,
					Asset:       asset,
					Duration:    segment.Duration,
					TextOverlay: overlay,
				})

			default:
				asset := fullFrameAsset(sceneAssets, segment.Type)
				if asset == "" {
					continue
				}
				units = append(units, models.RenderUnit{
					Kind:        models.UnitFullFrame,
					Asset:       asset,
					Duration:    segment.Duration,
					TextOverlay: overlay,
				})
			}
		}

		if len(units) == 0 {
			continue
		}
		tasks = append(tasks, models.RenderTask{
			SceneNumber: scene.SceneNumber,
			Units:       units,
		})
	}

	if len(tasks) == 0 {
		return nil, errors.Validationf(errors.CodeInvalidTemplate,
			"template %s produced no renderable scenes", template.TemplateID)
	}
	return tasks, nil
}

func fullFrameAsset(sceneAssets map[string]string, segmentType string) string {
	if asset := sceneAssets[segmentType]; asset != "" {
		return asset
	}
	if asset := sceneAssets[models.SegmentFullWinner]; asset != "" {
		return asset
	}
	return sceneAssets[models.SegmentFull]
}
