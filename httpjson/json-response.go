package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/programme-lv/arena/srvcerror"
)

// JsonResponse is the envelope every backend endpoint answers with.
type JsonResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
	ErrCode string `json:"code,omitempty"`
}

// RawJsonResponse is the decoding side of JsonResponse; data stays
// undecoded until the caller knows its type.
type RawJsonResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	ErrMsg  string          `json:"message,omitempty"`
	ErrCode string          `json:"code,omitempty"`
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	WriteSuccessJsonStatus(w, http.StatusOK, data)
}

func WriteSuccessJsonStatus(w http.ResponseWriter, statusCode int, data any) {
	resp := JsonResponse{
		Success: true,
		Data:    data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	resp := JsonResponse{
		Success: false,
		ErrMsg:  errMsg,
		ErrCode: errCode,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func writeInternalErrorJson(w http.ResponseWriter) {
	WriteErrorJson(w,
		http.StatusText(http.StatusInternalServerError),
		http.StatusInternalServerError,
		srvcerror.ErrCodeInternal)
}

func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if errors.As(err, &srvcErr) {
		status := srvcErr.HttpStatusCode()
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status == http.StatusInternalServerError {
			logger.Error("internal error", "error", err)
		}
		WriteErrorJson(w, srvcErr.Error(), status, srvcErr.ErrorCode())
		return
	}
	logger.Error("internal error", "error", err)
	writeInternalErrorJson(w)
}
