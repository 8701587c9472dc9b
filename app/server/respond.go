package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func statusFor(kind faults.Kind) (int, string) {
	switch kind {
	case faults.KindInvalidInput:
		return http.StatusBadRequest, "bad_request"
	case faults.KindParse:
		return http.StatusUnprocessableEntity, "parse_error"
	case faults.KindServiceUnavailable:
		return http.StatusBadGateway, "service_unavailable"
	case faults.KindDimensionMismatch:
		return http.StatusBadGateway, "dimension_mismatch"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(faults.KindOf(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Warn("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}
