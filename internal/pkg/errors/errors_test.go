package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKindCodeMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantKind   Kind
		wantCode   string
		wantStatus int
	}{
		{
			name:       "validation",
			err:        Validationf(CodeInvalidURL, "only HTTPS URLs are allowed"),
			wantKind:   KindValidation,
			wantCode:   CodeInvalidURL,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        NotFoundf(CodeJobNotFound, "job missing"),
			wantKind:   KindNotFound,
			wantCode:   CodeJobNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "queue full",
			err:        QueueFullf("queue is full"),
			wantKind:   KindQueueFull,
			wantCode:   CodeQueueFull,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "asset fetch",
			err:        AssetFetchf(CodeImageDownloadFailed, "download failed"),
			wantKind:   KindAssetFetch,
			wantCode:   CodeImageDownloadFailed,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "external tool",
			err:        ExternalToolf(CodeFFmpegError, "ffmpeg exploded"),
			wantKind:   KindExternalTool,
			wantCode:   CodeFFmpegError,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "untyped",
			err:        fmt.Errorf("plain failure"),
			wantKind:   KindUnexpected,
			wantCode:   CodeUnexpected,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if kind := KindOf(tc.err); kind != tc.wantKind {
				t.Fatalf("KindOf = %s, want %s", kind, tc.wantKind)
			}
			if code := CodeOf(tc.err); code != tc.wantCode {
				t.Fatalf("CodeOf = %s, want %s", code, tc.wantCode)
			}
			if status := HTTPStatus(tc.err); status != tc.wantStatus {
				t.Fatalf("HTTPStatus = %d, want %d", status, tc.wantStatus)
			}
		})
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, KindUnexpected, CodeUnexpected, "write artifact")

	if !Is(err, cause) {
		t.Fatal("wrapped cause lost")
	}
	var typed *Error
	if !As(err, &typed) {
		t.Fatal("As failed on wrapped error")
	}
	if typed.Code != CodeUnexpected {
		t.Fatalf("code = %s", typed.Code)
	}
	if MessageOf(err) != "write artifact" {
		t.Fatalf("message = %q", MessageOf(err))
	}

	if Wrap(nil, KindUnexpected, CodeUnexpected, "noop") != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
}

func TestUnexpectedPreservesTypedErrors(t *testing.T) {
	typed := Validationf(CodeInvalidTemplate, "bad scene")
	got := Unexpected(fmt.Errorf("wrapped: %w", typed))
	if got.Kind != KindValidation || got.Code != CodeInvalidTemplate {
		t.Fatalf("Unexpected rewrote typed error: %+v", got)
	}

	plain := Unexpected(fmt.Errorf("boom"))
	if plain.Kind != KindUnexpected || plain.Code != CodeUnexpected {
		t.Fatalf("plain error = %+v", plain)
	}
}

func TestIsMatchesOnKind(t *testing.T) {
	err := AssetFetchf(CodeImageDownloadTimeout, "slow cdn")
	if !Is(err, &Error{Kind: KindAssetFetch}) {
		t.Fatal("kind match failed")
	}
	if Is(err, &Error{Kind: KindValidation}) {
		t.Fatal("kind mismatch accepted")
	}
	if !Is(err, &Error{Kind: KindAssetFetch, Code: CodeImageDownloadTimeout}) {
		t.Fatal("kind+code match failed")
	}
	if Is(err, &Error{Kind: KindAssetFetch, Code: CodeImageDownloadFailed}) {
		t.Fatal("code mismatch accepted")
	}
}
