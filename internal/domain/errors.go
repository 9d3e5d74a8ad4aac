package domain

import (
	"errors"
	"net/http"

	"github.com/Vovarama1992/videodl/internal/models"
)

type ErrorKind int

const (
	KindUpstreamFailure ErrorKind = iota
	KindMissingParameter
	KindUnsupportedPlatform
	KindBlockedPlatform
	KindNoMediaFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing_parameter"
	case KindUnsupportedPlatform:
		return "unsupported_platform"
	case KindBlockedPlatform:
		return "blocked_platform"
	case KindNoMediaFound:
		return "no_media_found"
	default:
		return "upstream_failure"
	}
}

// HTTPStatus maps an error kind to the status code the API answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindMissingParameter, KindUnsupportedPlatform:
		return http.StatusBadRequest
	case KindBlockedPlatform:
		return http.StatusForbidden
	case KindNoMediaFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type that crosses the HTTP boundary. Message is shown to
// the client verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

const (
	MsgURLRequired         = "URL parameter is required"
	MsgUnsupportedPlatform = "Unsupported platform or unable to extract video"
	MsgYouTubeBlocked      = "YouTube videos are not supported. Only YouTube Shorts can be downloaded."
	MsgNoVideoFound        = "No video found in this post"
)

// ErrNoMedia is returned by strategies that reached the post but found no video in it.
var ErrNoMedia = models.ErrNoMedia

func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the kind of err, defaulting to KindUpstreamFailure.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUpstreamFailure
}

var ErrHistoryDisabled = errors.New("history is not enabled")
