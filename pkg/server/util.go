package server

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/heathcliff26/webhook-validator/pkg/validator"
)

func isFormRequest(req *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	return err == nil && mediaType == contentTypeForm
}

func requestType(req validator.Request) string {
	switch req.(type) {
	case validator.FormRequest:
		return "form"
	case validator.RawBodyRequest:
		return "body"
	default:
		return "unknown"
	}
}

func writeStatus(rw http.ResponseWriter, code int, status string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_, err := rw.Write([]byte(`{"status":"` + status + `"}`))
	if err != nil {
		slog.Error("Failed to write response", slog.String("err", err.Error()))
	}
}
