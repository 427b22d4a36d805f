package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shirt-orders/api/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// writeOrderError maps the order error taxonomy onto HTTP statuses.
// Anything unrecognised is logged under op and answered with a 500.
func writeOrderError(w http.ResponseWriter, op string, err error) {
	var ve *order.ValidationError
	var ue *order.UploadError
	var pe *order.PersistenceError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, storage.ErrInvalidType), errors.Is(err, storage.ErrTooLarge):
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation failed",
			Fields: map[string]string{"payment_proof": proofMessage(err)},
		})
	case errors.As(err, &ue):
		log.Error().Err(err).Msg(op)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment proof upload failed, please try again"})
	case errors.As(err, &pe):
		log.Error().Err(err).Str("op", pe.Op).Msg(op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save, please try again"})
	default:
		log.Error().Err(err).Msg(op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func proofMessage(err error) string {
	var ue *order.UploadError
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}
