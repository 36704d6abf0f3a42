package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/frontier/internal/analysis"
	"github.com/wonny/frontier/internal/analysisconfig"
	"github.com/wonny/frontier/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps a service error to an HTTP status.
// 요청 형식 오류 400, 데이터/가중치 결함 422, 시간 초과 504, 나머지 500
func statusFor(err error) int {
	var ve analysisconfig.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, analysis.ErrUnknownPreset):
		return http.StatusBadRequest
	case contracts.IsInputError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
