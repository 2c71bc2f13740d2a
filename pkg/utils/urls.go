package utils

import (
	"net/url"
	"path"
	"strings"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
)

// ValidateAssetURL applies URL policy before any network call: the URL must
// parse, use https, and, when an allow-list is configured, resolve to a listed
// host.
func ValidateAssetURL(rawURL string, allowedDomains []string) error {
	if rawURL == "" {
		return errors.Validationf(errors.CodeInvalidURL, "asset URL is required")
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return errors.Validationf(errors.CodeInvalidURL, "only HTTPS URLs are allowed: %s", rawURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.Validationf(errors.CodeInvalidURL, "invalid URL format: %s", rawURL)
	}
	if len(allowedDomains) > 0 {
		allowed := false
		for _, domain := range allowedDomains {
			if parsed.Host == domain {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.Validationf(errors.CodeDomainNotAllowed, "domain not allowed: %s", parsed.Host)
		}
	}
	return nil
}

// URLExtension returns the file extension of the URL path, defaulting to .png
// when the path carries none.
func URLExtension(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ".png"
	}
	ext := path.Ext(parsed.Path)
	if ext == "" {
		return ".png"
	}
	return ext
}
