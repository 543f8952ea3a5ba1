package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorDetail is the body of the "error" member.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type dataEnvelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes {"data": v} with status.
func JSON(w http.ResponseWriter, status int, v any) {
	write(w, status, dataEnvelope{Data: v})
}

// JSONWithMeta writes {"data": v, "meta": meta} with status.
func JSONWithMeta(w http.ResponseWriter, status int, v any, meta map[string]any) {
	write(w, status, dataEnvelope{Data: v, Meta: meta})
}

// Error writes {"error": {...}}. HTTPError and ValidationError keep their
// status and details; any other error becomes a 500 without leaking its text.
func Error(w http.ResponseWriter, err error) {
	status, detail := ToDetail(err)
	write(w, status, errorEnvelope{Error: detail})
}

// ToDetail converts err into a status code and error body.
func ToDetail(err error) (int, ErrorDetail) {
	var valErr ValidationError
	if errors.As(err, &valErr) {
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    ErrUnprocessable.Key,
			Message: "request validation failed",
			Details: map[string][]string(valErr),
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, ErrorDetail{Code: httpErr.Key, Message: msg, Details: httpErr.Details}
	}

	return http.StatusInternalServerError, ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
