package models

// RenderRequest is the validated payload submitted with a render job. The
// validation collaborator guarantees every required (scene, segment) URL is
// present; the pipeline re-verifies presence defensively before any download.
type RenderRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
	// Images maps scene key -> segment type -> asset URL.
	Images     map[string]map[string]string `json:"images" validate:"required"`
	CustomText map[string]string            `json:"custom_text,omitempty"`
	AudioURL   string                       `json:"audio_url,omitempty"`
	WebhookURL string                       `json:"webhook_url,omitempty"`
}

// ImageURL looks up the supplied asset URL for one (scene, segment) slot.
func (r *RenderRequest) ImageURL(sceneKey, segmentType string) string {
	if r.Images == nil {
		return ""
	}
	return r.Images[sceneKey][segmentType]
}

// AssetRequirement is one (scene, segment) slot that needs a downloaded asset.
type AssetRequirement struct {
	SceneKey    string
	SegmentType string
	URL         string
}

// UnitKind tells the coordinator which external-tool composition to invoke.
type UnitKind string

const (
	// UnitSplitPair combines a top and bottom asset into one split-screen clip.
	UnitSplitPair UnitKind = "split_pair"
	// UnitFullFrame renders one asset full-frame, optionally with a text overlay.
	UnitFullFrame UnitKind = "full_frame"
)

// RenderUnit is one external-tool invocation within a scene.
type RenderUnit struct {
	Kind        UnitKind
	TopAsset    string
	BottomAsset string
	Asset       string
	Duration    float64
	TextOverlay string
}

// RenderTask is the per-scene unit of work: the composed invocations derived
// from the scene's segments plus resolved local asset paths. Tasks are
// mutually independent.
type RenderTask struct {
	SceneNumber int
	Units       []RenderUnit
}

// SceneResult is a finished task's output: the scene's clip paths in template
// order. Finalize sorts results by SceneNumber before concatenation.
type SceneResult struct {
	SceneNumber int
	Clips       []string
}

// SubmitResponse acknowledges an accepted render job.
type SubmitResponse struct {
	Status               string `json:"status"`
	JobID                string `json:"job_id"`
	TemplateID           string `json:"template_id"`
	EstimatedTimeSeconds int    `json:"estimated_time_seconds"`
	CheckStatusURL       string `json:"check_status_url"`
}
