// Package errors provides the tagged error type used across the rendering
// pipeline. Every failure carries a Kind (the coarse category the failure
// propagator matches on) and a stable Code exposed to API callers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the coarse failure category.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindQueueFull    Kind = "queue_full"
	KindNotFound     Kind = "not_found"
	KindAssetFetch   Kind = "asset_fetch"
	KindExternalTool Kind = "external_tool"
	KindUnexpected   Kind = "unexpected"
)

// Stable error codes surfaced in API responses and webhook payloads.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidURL           = "INVALID_URL"
	CodeDomainNotAllowed     = "DOMAIN_NOT_ALLOWED"
	CodeInvalidTemplate      = "INVALID_TEMPLATE"
	CodeInvalidTemplateName  = "INVALID_TEMPLATE_NAME"
	CodeTemplateNotFound     = "TEMPLATE_NOT_FOUND"
	CodeTemplateExists       = "TEMPLATE_EXISTS"
	CodeCannotDelete         = "CANNOT_DELETE"
	CodeJobNotFound          = "JOB_NOT_FOUND"
	CodeQueueFull            = "QUEUE_FULL"
	CodeMissingImage         = "MISSING_IMAGE"
	CodeMissingImages        = "MISSING_IMAGES"
	CodeInvalidImage         = "INVALID_IMAGE"
	CodeImageDownloadTimeout = "IMAGE_DOWNLOAD_TIMEOUT"
	CodeImageDownloadFailed  = "IMAGE_DOWNLOAD_FAILED"
	CodeFFmpegError          = "FFMPEG_ERROR"
	CodeFFmpegTimeout        = "FFMPEG_TIMEOUT"
	CodeFFmpegNotAvailable   = "FFMPEG_NOT_AVAILABLE"
	CodeVideoNotReady        = "VIDEO_NOT_READY"
	CodeVideoNotFound        = "VIDEO_NOT_FOUND"
	CodeUnexpected           = "UNEXPECTED_ERROR"
	CodeServerError          = "SERVER_ERROR"
)

// Error is the tagged error carried from pipeline tasks up to the job record.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind and, when set on the target, Code. Lets callers write
// errors.Is(err, &Error{Kind: KindValidation}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and code to an underlying error. Returns nil for nil err.
func Wrap(err error, kind Kind, code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validationf(code, format string, args ...interface{}) *Error {
	return Newf(KindValidation, code, format, args...)
}

func NotFoundf(code, format string, args ...interface{}) *Error {
	return Newf(KindNotFound, code, format, args...)
}

func QueueFullf(format string, args ...interface{}) *Error {
	return Newf(KindQueueFull, CodeQueueFull, format, args...)
}

func AssetFetchf(code, format string, args ...interface{}) *Error {
	return Newf(KindAssetFetch, code, format, args...)
}

func ExternalToolf(code, format string, args ...interface{}) *Error {
	return Newf(KindExternalTool, code, format, args...)
}

// Unexpected converts any error into the catch-all kind, preserving an
// existing *Error unchanged.
func Unexpected(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnexpected, Code: CodeUnexpected, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, or KindUnexpected for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// CodeOf returns the stable code of err, or CodeUnexpected for untyped errors.
func CodeOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnexpected
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// HTTPStatus maps an error to the response status the delivery layer uses.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindQueueFull:
		return http.StatusServiceUnavailable
	case KindAssetFetch, KindExternalTool:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Re-exports so callers need a single errors import.

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
