package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeError maps err to its status code. Unclassified errors are logged and
// reported as internal without their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.Kind(err)
	status := http.StatusInternalServerError
	msg := err.Error()
	switch kind {
	case "validation":
		status = http.StatusBadRequest
	case "not_found":
		status = http.StatusNotFound
	case "conflict":
		status = http.StatusConflict
	case "store_unavailable":
		status = http.StatusServiceUnavailable
	default:
		kind = "internal"
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestID(r.Context())),
			slog.Any("err", err),
		)
	}
	writeJSON(w, errorResponse{Error: kind, Message: msg, Fields: apperr.Fields(err)}, status)
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return apperr.FieldErrors{field: "has the wrong type"}
		case errors.As(err, &syntaxErr):
			return apperr.Validation("malformed JSON at offset %d", syntaxErr.Offset)
		default:
			return apperr.Validation("invalid request body: %v", err)
		}
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.FieldErrors{name: "must be a positive integer"}
	}
	return id, nil
}

// queryBool parses an optional boolean query parameter; absent yields nil.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.FieldErrors{name: "must be true or false"}
	}
	return &b, nil
}
