package render

import (
	"strings"
	"testing"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
)

func fightScene(n int) models.Scene {
	return models.Scene{
		SceneNumber: n,
		Segments: []models.Segment{
			{Type: models.SegmentSplitTop, Duration: 3},
			{Type: models.SegmentSplitBottom, Duration: 3},
			{Type: models.SegmentFullWinner, Duration: 4},
		},
	}
}

func TestValidateRenderRequestCollectsMissing(t *testing.T) {
	template := sceneTemplate(fightScene(1), fightScene(2))
	request := &models.RenderRequest{
		TemplateID: "test",
		Images: map[string]map[string]string{
			"scene_1": {
				models.SegmentSplitTop:    "https://cdn.example.com/top.png",
				models.SegmentSplitBottom: "https://cdn.example.com/bottom.png",
				models.SegmentFullWinner:  "https://cdn.example.com/winner.png",
			},
			"scene_2": {
				models.SegmentSplitTop: "https://cdn.example.com/top2.png",
			},
		},
	}

	err := ValidateRenderRequest(template, request, nil)
	if errors.CodeOf(err) != errors.CodeMissingImages {
		t.Fatalf("err = %v, want %s", err, errors.CodeMissingImages)
	}
	msg := errors.MessageOf(err)
	for _, slot := range []string{"scene_2.split_bottom", "scene_2.full_winner"} {
		if !strings.Contains(msg, slot) {
			t.Fatalf("message %q misses slot %s", msg, slot)
		}
	}
	if strings.Contains(msg, "scene_1") {
		t.Fatalf("message %q flags satisfied scene", msg)
	}
}

func TestValidateRenderRequestURLPolicy(t *testing.T) {
	template := sceneTemplate(models.Scene{
		SceneNumber: 1,
		Segments:    []models.Segment{{Type: models.SegmentFull, Duration: 2}},
	})

	t.Run("insecure scheme", func(t *testing.T) {
		request := &models.RenderRequest{
			TemplateID: "test",
			Images: map[string]map[string]string{
				"scene_1": {models.SegmentFull: "http://cdn.example.com/full.png"},
			},
		}
		err := ValidateRenderRequest(template, request, nil)
		if errors.CodeOf(err) != errors.CodeInvalidURL {
			t.Fatalf("err = %v, want %s", err, errors.CodeInvalidURL)
		}
	})

	t.Run("domain not allowed", func(t *testing.T) {
		request := &models.RenderRequest{
			TemplateID: "test",
			Images: map[string]map[string]string{
				"scene_1": {models.SegmentFull: "https://evil.example.org/full.png"},
			},
		}
		err := ValidateRenderRequest(template, request, []string{"cdn.example.com"})
		if errors.CodeOf(err) != errors.CodeDomainNotAllowed {
			t.Fatalf("err = %v, want %s", err, errors.CodeDomainNotAllowed)
		}
	})
}

func TestRequirementsFallbackAndOrder(t *testing.T) {
	template := sceneTemplate(
		models.Scene{
			SceneNumber: 1,
			Segments: []models.Segment{
				{Type: models.SegmentSplitTop, Duration: 3},
				{Type: models.SegmentSplitBottom, Duration: 3},
			},
		},
		models.Scene{
			SceneNumber: 2,
			// full_screen falls back to the scene's full_winner image.
			Segments: []models.Segment{{Type: models.SegmentFullScreen, Duration: 4}},
		},
	)
	request := &models.RenderRequest{
		TemplateID: "test",
		Images: map[string]map[string]string{
			"scene_1": {
				models.SegmentSplitTop:    "https://cdn.example.com/top.png",
				models.SegmentSplitBottom: "https://cdn.example.com/bottom.png",
			},
			"scene_2": {
				models.SegmentFullWinner: "https://cdn.example.com/winner.png",
			},
		},
	}

	reqs, err := Requirements(template, request, nil)
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if len(reqs) != 3 {
		t.Fatalf("got %d requirements, want 3", len(reqs))
	}
	if reqs[0].SceneKey != "scene_1" || reqs[0].SegmentType != models.SegmentSplitTop {
		t.Fatalf("requirements out of template order: %+v", reqs)
	}
	last := reqs[2]
	if last.SegmentType != models.SegmentFullScreen || last.URL != "https://cdn.example.com/winner.png" {
		t.Fatalf("fallback requirement = %+v", last)
	}

	// Split slots never fall back to full images.
	request.Images["scene_1"] = map[string]string{
		models.SegmentFullWinner: "https://cdn.example.com/winner.png",
	}
	if _, err := Requirements(template, request, nil); errors.CodeOf(err) != errors.CodeMissingImage {
		t.Fatalf("err = %v, want %s", err, errors.CodeMissingImage)
	}
}
