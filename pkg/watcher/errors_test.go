package watcher

import (
	"errors"
	"net/http"
	"testing"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestStreamError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err         error
		wantCode    int32
		wantReason  metav1.StatusReason
		wantExpired bool
	}{
		"status error": {
			err:        apierrors.FromObject(status(http.StatusInternalServerError, metav1.StatusReasonInternalError)),
			wantCode:   http.StatusInternalServerError,
			wantReason: metav1.StatusReasonInternalError,
		},
		"expired": {
			err:         apierrors.FromObject(status(http.StatusGone, metav1.StatusReasonExpired)),
			wantCode:    http.StatusGone,
			wantReason:  metav1.StatusReasonExpired,
			wantExpired: true,
		},
		"gone": {
			err:         apierrors.NewGone("too old"),
			wantCode:    http.StatusGone,
			wantReason:  metav1.StatusReasonGone,
			wantExpired: true,
		},
		"transport error": {
			err:        errors.New("connection refused"),
			wantReason: metav1.StatusReasonUnknown,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			se := newStreamError(tc.err)
			if se.Code != tc.wantCode || se.Reason != tc.wantReason {
				t.Errorf("StreamError = {%d %q}, want {%d %q}", se.Code, se.Reason, tc.wantCode, tc.wantReason)
			}
			if !errors.Is(se, tc.err) {
				t.Error("StreamError does not unwrap to the cause")
			}
			if got := isExpired(se); got != tc.wantExpired {
				t.Errorf("isExpired() = %v, want %v", got, tc.wantExpired)
			}
			if streamCode(se) != tc.wantCode || streamReason(se) != tc.wantReason {
				t.Errorf("streamCode/streamReason = %d/%q", streamCode(se), streamReason(se))
			}
		})
	}
}
