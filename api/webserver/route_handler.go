package webserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/metrics"
)

// handlerFn produces either a JSON-serializable payload, an error, or a
// streamResponse for bodies too large to buffer.
type handlerFn func(r *http.Request, ctx rcontext.RequestContext, userId string) interface{}

type streamResponse struct {
	contentType string
	writeFn     func(w io.Writer) error
}

type errorPayload struct {
	Error string `json:"error"`
}

// wrap applies the shared request plumbing: account header auth stub,
// per-request logger, metrics, and error-to-status mapping. Session handling
// proper lives in front of this service.
func wrap(action string, fn handlerFn) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HttpRequests.With(map[string]string{"action": action, "method": r.Method}).Inc()

		userId := r.Header.Get("X-Account-Id")
		if userId == "" {
			respondJson(w, r, action, http.StatusUnauthorized, &errorPayload{Error: "missing X-Account-Id"})
			return
		}

		log := logrus.WithFields(logrus.Fields{
			"action": action,
			"method": r.Method,
			"userId": userId,
		})
		ctx := rcontext.ForRequest(r, log)

		res := fn(r, ctx, userId)
		if err, ok := res.(error); ok {
			respondJson(w, r, action, statusForError(err), &errorPayload{Error: err.Error()})
			if statusForError(err) == http.StatusInternalServerError {
				ctx.Log.Error("Unhandled error in request: ", err)
				sentry.CaptureException(err)
			}
			return
		}
		if stream, ok := res.(*streamResponse); ok {
			w.Header().Set("Content-Type", stream.contentType)
			w.WriteHeader(http.StatusOK)
			metrics.HttpResponses.With(map[string]string{"action": action, "method": r.Method, "statusCode": "200"}).Inc()
			if err := stream.writeFn(w); err != nil {
				ctx.Log.Error("Error streaming response: ", err)
				sentry.CaptureException(err)
			}
			return
		}
		respondJson(w, r, action, http.StatusOK, res)
	})
}

func respondJson(w http.ResponseWriter, r *http.Request, action string, status int, payload interface{}) {
	metrics.HttpResponses.With(map[string]string{"action": action, "method": r.Method, "statusCode": strconv.Itoa(status)}).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, common.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, common.ErrUrlTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrMalformed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
