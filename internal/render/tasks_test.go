package render

import (
	"testing"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
)

func sceneTemplate(scenes ...models.Scene) *models.Template {
	return &models.Template{
		TemplateID:   "test",
		TemplateName: "test",
		Scenes:       scenes,
	}
}

func TestBuildRenderTasksSplitPair(t *testing.T) {
	template := sceneTemplate(models.Scene{
		SceneNumber: 1,
		Segments: []models.Segment{
			{Type: models.SegmentSplitTop, Duration: 3},
			{Type: models.SegmentSplitBottom, Duration: 3},
			{Type: models.SegmentFullWinner, Duration: 4},
		},
	})
	assets := map[string]map[string]string{
		"scene_1": {
			models.SegmentSplitTop:    "/tmp/a/top.png",
			models.SegmentSplitBottom: "/tmp/a/bottom.png",
			models.SegmentFullWinner:  "/tmp/a/winner.png",
		},
	}

	tasks, err := BuildRenderTasks(template, assets, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(tasks) != 1 || len(tasks[0].Units) != 2 {
		t.Fatalf("got %d tasks, units %v", len(tasks), tasks)
	}

	pair := tasks[0].Units[0]
	if pair.Kind != models.UnitSplitPair || pair.TopAsset != "/tmp/a/top.png" || pair.BottomAsset != "/tmp/a/bottom.png" {
		t.Fatalf("pair unit = %+v", pair)
	}
	if pair.Duration != 3 {
		t.Fatalf("pair duration = %v, want split_top duration 3", pair.Duration)
	}
	full := tasks[0].Units[1]
	if full.Kind != models.UnitFullFrame || full.Asset != "/tmp/a/winner.png" || full.Duration != 4 {
		t.Fatalf("full unit = %+v", full)
	}
}

func TestBuildRenderTasksRejectsMalformedScenes(t *testing.T) {
	cases := []struct {
		name     string
		segments []models.Segment
	}{
		{
			name: "duplicate split_top",
			segments: []models.Segment{
				{Type: models.SegmentSplitTop, Duration: 3},
				{Type: models.SegmentSplitBottom, Duration: 3},
				{Type: models.SegmentSplitTop, Duration: 2},
			},
		},
		{
			name: "duplicate split_bottom",
			segments: []models.Segment{
				{Type: models.SegmentSplitTop, Duration: 3},
				{Type: models.SegmentSplitBottom, Duration: 3},
				{Type: models.SegmentSplitBottom, Duration: 2},
			},
		},
		{
			name: "lone split_bottom",
			segments: []models.Segment{
				{Type: models.SegmentSplitBottom, Duration: 3},
			},
		},
		{
			name: "lone split_top",
			segments: []models.Segment{
				{Type: models.SegmentSplitTop, Duration: 3},
			},
		},
	}

	assets := map[string]map[string]string{
		"scene_1": {
			models.SegmentSplitTop:    "/tmp/a/top.png",
			models.SegmentSplitBottom: "/tmp/a/bottom.png",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			template := sceneTemplate(models.Scene{SceneNumber: 1, Segments: tc.segments})
			_, err := BuildRenderTasks(template, assets, nil)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if errors.CodeOf(err) != errors.CodeInvalidTemplate {
				t.Fatalf("code = %s, want %s", errors.CodeOf(err), errors.CodeInvalidTemplate)
			}
		})
	}
}

func TestBuildRenderTasksUnknownType(t *testing.T) {
	template := sceneTemplate(
		models.Scene{
			SceneNumber: 1,
			Segments: []models.Segment{
				{Type: "picture_in_picture", Duration: 2},
				{Type: models.SegmentFull, Duration: 3},
			},
		},
		models.Scene{
			SceneNumber: 2,
			Segments: []models.Segment{
				{Type: "hologram", Duration: 2},
			},
		},
	)
	assets := map[string]map[string]string{
		"scene_1": {models.SegmentFull: "/tmp/a/full.png"},
	}

	// Scene 1's unknown segment falls back to the full asset; scene 2 has no
	// asset at all and is skipped entirely.
	tasks, err := BuildRenderTasks(template, assets, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(tasks) != 1 || tasks[0].SceneNumber != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if len(tasks[0].Units) != 2 {
		t.Fatalf("scene 1 units = %+v", tasks[0].Units)
	}
}

func TestBuildRenderTasksCustomText(t *testing.T) {
	template := sceneTemplate(models.Scene{
		SceneNumber: 2,
		Segments: []models.Segment{
			{Type: models.SegmentSplitTop, Duration: 3},
			{Type: models.SegmentSplitBottom, Duration: 3},
			{Type: models.SegmentFullScreen, Duration: 4},
		},
	})
	assets := map[string]map[string]string{
		"scene_2": {
			models.SegmentSplitTop:    "/tmp/a/top.png",
			models.SegmentSplitBottom: "/tmp/a/bottom.png",
			models.SegmentFullScreen:  "/tmp/a/full.png",
		},
	}

	tasks, err := BuildRenderTasks(template, assets, map[string]string{"scene_2": "ROUND 2"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	units := tasks[0].Units
	if units[0].TextOverlay != "" {
		t.Fatalf("split pair carries text overlay %q", units[0].TextOverlay)
	}
	if units[1].TextOverlay != "ROUND 2" {
		t.Fatalf("full frame overlay = %q, want ROUND 2", units[1].TextOverlay)
	}
}
