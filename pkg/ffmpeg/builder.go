package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// Builder produces argument vectors for the external tool. One Builder is
// created per job from the template's output settings.
type Builder struct {
	Width  int
	Height int
	FPS    int
	Codec  string
}

func NewBuilder(settings models.OutputSettings) *Builder {
	b := &Builder{
		Width:  settings.Width,
		Height: settings.Height,
		FPS:    settings.FPS,
		Codec:  settings.Codec,
	}
	if b.Width <= 0 {
		b.Width = 720
	}
	if b.Height <= 0 {
		b.Height = 1280
	}
	if b.FPS <= 0 {
		b.FPS = 30
	}
	if b.Codec == "" {
		b.Codec = "libx264"
	}
	return b
}

func formatSeconds(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// SplitScreenArgs stacks a top and bottom image into one clip.
func (b *Builder) SplitScreenArgs(topImage, bottomImage, outputPath string, duration float64) []string {
	halfHeight := b.Height / 2

	filterComplex := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2[top];"+
			"[1:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2[bottom];"+
			"[top][bottom]vstack=inputs=2[out]",
		b.Width, halfHeight, b.Width, halfHeight,
		b.Width, halfHeight, b.Width, halfHeight,
	)

	return []string{
		"-y",
		"-loop", "1", "-t", formatSeconds(duration), "-i", topImage,
		"-loop", "1", "-t", formatSeconds(duration), "-i", bottomImage,
		"-filter_complex", filterComplex,
		"-map", "[out]",
		"-t", formatSeconds(duration),
		"-c:v", b.Codec,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(b.FPS),
		outputPath,
	}
}

// FullScreenArgs renders one image full-frame, optionally with a text overlay.
func (b *Builder) FullScreenArgs(image, outputPath string, duration float64, textOverlay string) []string {
	vfParts := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", b.Width, b.Height),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", b.Width, b.Height),
	}

	if textOverlay != "" {
		escaped := escapeDrawtext(textOverlay)
		vfParts = append(vfParts, fmt.Sprintf(
			"drawtext=text='%s':fontsize=60:fontcolor=white:x=(w-text_w)/2:y=h-100:borderw=3:bordercolor=black",
			escaped,
		))
	}

	return []string{
		"-y",
		"-loop", "1", "-t", formatSeconds(duration), "-i", image,
		"-vf", strings.Join(vfParts, ","),
		"-t", formatSeconds(duration),
		"-c:v", b.Codec,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(b.FPS),
		outputPath,
	}
}

func escapeDrawtext(text string) string {
	escaped := strings.ReplaceAll(text, "'", `'\''`)
	return strings.ReplaceAll(escaped, ":", `\:`)
}

// WriteConcatFile writes the ordered concatenation manifest next to the output.
func WriteConcatFile(inputFiles []string, concatPath string) error {
	var sb strings.Builder
	for _, input := range inputFiles {
		abs, err := filepath.Abs(input)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "file '%s'\n", abs)
	}
	return os.WriteFile(concatPath, []byte(sb.String()), 0644)
}

// ConcatArgs stitches the manifest entries via stream copy.
func (b *Builder) ConcatArgs(concatPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatPath,
		"-c", "copy",
		outputPath,
	}
}

// ConcatWithAudioArgs stitches the manifest and muxes the audio track in the
// same pass: volume scale, optional fade in/out, looped or single-shot
// playback bounded to the video duration.
func (b *Builder) ConcatWithAudioArgs(concatPath, audioPath, outputPath string, audio models.AudioSettings, totalDuration float64) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatPath,
	}

	if audio.Loop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args, "-i", audioPath)

	volume := audio.Volume
	if volume <= 0 {
		volume = 1.0
	}
	filters := []string{fmt.Sprintf("volume=%s", formatSeconds(volume))}
	if audio.FadeIn > 0 {
		filters = append(filters, fmt.Sprintf("afade=t=in:st=0:d=%s", formatSeconds(audio.FadeIn)))
	}
	if audio.FadeOut > 0 && totalDuration > audio.FadeOut {
		filters = append(filters, fmt.Sprintf(
			"afade=t=out:st=%s:d=%s",
			formatSeconds(totalDuration-audio.FadeOut), formatSeconds(audio.FadeOut),
		))
	}

	args = append(args,
		"-filter:a", strings.Join(filters, ","),
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
	)

	if audio.Loop && totalDuration > 0 {
		args = append(args, "-t", formatSeconds(totalDuration))
	} else {
		args = append(args, "-shortest")
	}

	return append(args, outputPath)
}
