package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/session"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/wizard"
)

type M map[string]any

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"error": msg})
}

// RespondWithJSON writes data as the JSON response body.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := sonic.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// statusFor maps an error from a wizard action onto an HTTP status.
func statusFor(err error) int {
	var parseFailure *enrich.ParseFailure
	var generationFailure *enrich.GenerationFailure
	var submissionFailure *submit.SubmissionFailure
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, wizard.ErrUnknownCommand), errors.Is(err, wizard.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound), errors.Is(err, enrich.ErrPlaceNotFound), errors.Is(err, submit.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, wizard.ErrNotOptional), errors.Is(err, wizard.ErrFinished),
		errors.Is(err, tripwizard.ErrNotReady), errors.Is(err, tripwizard.ErrNoPreview):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, tripwizard.ErrNoPlaces), errors.Is(err, enrich.ErrPlacesDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &parseFailure), errors.As(err, &generationFailure), errors.As(err, &submissionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWizard writes a wizard response. Failed validation answers 422 with
// the field errors in the body.
func respondWizard(w http.ResponseWriter, code int, resp *tripwizard.Response, err error) {
	if err != nil {
		body := M{"error": err.Error()}
		if resp != nil {
			body["message"] = resp.Message
			body["wizard"] = resp
		}
		RespondWithJSON(w, statusFor(err), body)
		return
	}
	if !resp.Result.Valid() {
		code = http.StatusUnprocessableEntity
	}
	RespondWithJSON(w, code, resp)
}
