package repository

import "github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"

// DefaultFightVideoTemplate is the seeded 8-scene split-screen template:
// each scene shows two contestants stacked, then the winner full-frame.
func DefaultFightVideoTemplate() *models.Template {
	scenes := make([]models.Scene, 0, 8)
	for i := 1; i <= 8; i++ {
		scenes = append(scenes, models.Scene{
			SceneNumber: i,
			Segments: []models.Segment{
				{Type: models.SegmentSplitTop, Duration: 3, Position: "top_half"},
				{Type: models.SegmentSplitBottom, Duration: 3, Position: "bottom_half"},
				{Type: models.SegmentFullWinner, Duration: 4, Position: "full_screen"},
			},
		})
	}

	return &models.Template{
		TemplateID:   "fight_video_standard",
		TemplateName: "fight_video_standard",
		Description:  "8 scenes with split screen and winner reveal - standard fight video format",
		Scenes:       scenes,
		OutputSettings: models.OutputSettings{
			Width:  720,
			Height: 1280,
			FPS:    30,
			Format: "mp4",
			Codec:  "libx264",
		},
		Audio: models.AudioSettings{
			Enabled: false,
			Volume:  1.0,
			Loop:    true,
		},
		Transitions: models.TransitionSettings{
			Enabled:  true,
			Type:     "fade",
			Duration: 0.5,
		},
		CreatedAt: "2026-01-01T00:00:00Z",
		IsDefault: true,
	}
}
