package watcher

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// StreamError reports a failed watch connection or an error event received
// on the stream.
type StreamError struct {
	Code   int32
	Reason metav1.StatusReason
	Err    error
}

func newStreamError(err error) *StreamError {
	se := &StreamError{Err: err, Reason: apierrors.ReasonForError(err)}
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		se.Code = status.Status().Code
	}
	return se
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("watch stream failed (status %d, reason %q): %v", e.Code, e.Reason, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// isExpired reports whether err means the resourceVersion the watch resumed
// from is too old.
func isExpired(err error) bool {
	return apierrors.IsResourceExpired(err) || apierrors.IsGone(err)
}

func streamCode(err error) int32 {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func streamReason(err error) metav1.StatusReason {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Reason
	}
	return apierrors.ReasonForError(err)
}
