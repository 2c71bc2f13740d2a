package models

import "fmt"

// Segment types the composition rules recognize. Anything else renders
// best-effort full-frame when an asset exists.
const (
	SegmentSplitTop    = "split_top"
	SegmentSplitBottom = "split_bottom"
	SegmentFullWinner  = "full_winner"
	SegmentFullScreen  = "full_screen"
	SegmentFull        = "full"
)

type Segment struct {
	Type     string  `json:"type" validate:"required"`
	Duration float64 `json:"duration" validate:"required,gt=0"`
	Position string  `json:"position,omitempty"`
}

type Scene struct {
	SceneNumber int       `json:"scene_number" validate:"required"`
	Segments    []Segment `json:"segments" validate:"required,min=1,dive"`
}

// Key is the scene identifier used in asset maps ("scene_3").
func (s Scene) Key() string {
	return SceneKey(s.SceneNumber)
}

func SceneKey(sceneNumber int) string {
	return fmt.Sprintf("scene_%d", sceneNumber)
}

type OutputSettings struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	FPS    int    `json:"fps,omitempty"`
	Format string `json:"format,omitempty"`
	Codec  string `json:"codec,omitempty"`
}

type AudioSettings struct {
	Enabled   bool    `json:"enabled"`
	SourceURL string  `json:"source_url,omitempty"`
	Volume    float64 `json:"volume,omitempty"`
	FadeIn    float64 `json:"fade_in,omitempty"`
	FadeOut   float64 `json:"fade_out,omitempty"`
	Loop      bool    `json:"loop"`
}

type TransitionSettings struct {
	Enabled  bool    `json:"enabled"`
	Type     string  `json:"type,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Template is the declarative scene specification, stored as JSON on disk and
// consumed read-only by the pipeline.
type Template struct {
	TemplateID     string             `json:"template_id"`
	TemplateName   string             `json:"template_name" validate:"required"`
	Description    string             `json:"description,omitempty"`
	Scenes         []Scene            `json:"scenes" validate:"required,min=1,dive"`
	OutputSettings OutputSettings     `json:"output_settings"`
	Audio          AudioSettings      `json:"audio"`
	Transitions    TransitionSettings `json:"transitions"`
	CreatedAt      string             `json:"created_at,omitempty"`
	UpdatedAt      string             `json:"updated_at,omitempty"`
	IsDefault      bool               `json:"is_default"`
	ClonedFrom     string             `json:"cloned_from,omitempty"`
}

// TotalDuration sums all segment durations across scenes.
func (t *Template) TotalDuration() float64 {
	var total float64
	for _, scene := range t.Scenes {
		for _, segment := range scene.Segments {
			total += segment.Duration
		}
	}
	return total
}

// TemplateSummary is the list-view DTO.
type TemplateSummary struct {
	TemplateID           string  `json:"template_id"`
	TemplateName         string  `json:"template_name"`
	Description          string  `json:"description"`
	ScenesCount          int     `json:"scenes_count"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	CreatedAt            string  `json:"created_at,omitempty"`
	IsDefault            bool    `json:"is_default"`
}

func (t *Template) Summary() TemplateSummary {
	return TemplateSummary{
		TemplateID:           t.TemplateID,
		TemplateName:         t.TemplateName,
		Description:          t.Description,
		ScenesCount:          len(t.Scenes),
		TotalDurationSeconds: t.TotalDuration(),
		CreatedAt:            t.CreatedAt,
		IsDefault:            t.IsDefault,
	}
}

// TemplateUpdate carries the mutable fields of a template.
type TemplateUpdate struct {
	Description    *string             `json:"description,omitempty"`
	Scenes         []Scene             `json:"scenes,omitempty"`
	OutputSettings *OutputSettings     `json:"output_settings,omitempty"`
	Audio          *AudioSettings      `json:"audio,omitempty"`
	Transitions    *TransitionSettings `json:"transitions,omitempty"`
}
