package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/eleven-am/spycat/internal/agency"
	"github.com/eleven-am/spycat/internal/logger"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type detail struct {
	Detail string `json:"detail"`
}

type message struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.HTTP().Warn("failed to encode response", "err", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

// statusOf maps a failure kind to its HTTP status.
func statusOf(kind agency.Kind) int {
	switch kind {
	case agency.KindUnauthorized:
		return http.StatusUnauthorized
	case agency.KindForbidden:
		return http.StatusForbidden
	case agency.KindNotFound:
		return http.StatusNotFound
	case agency.KindConflict:
		return http.StatusConflict
	case agency.KindValidation:
		return http.StatusUnprocessableEntity
	case agency.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := agency.KindOf(err)
	status := statusOf(kind)

	if kind == agency.KindUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		logger.HTTP().Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}

	writeDetail(w, status, agency.MessageOf(err))
}

// decodeJSON reads one JSON object from the body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return agency.Invalid("Request body is required")
		}
		return agency.Invalid("Invalid request body: %v", err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return parseUUID(name, r.PathValue(name))
}

func parseUUID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, agency.Invalid("Invalid %s: %q is not a UUID", name, raw)
	}
	return id, nil
}
