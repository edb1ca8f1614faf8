package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
)

// maxBodyBytes caps request bodies read by parseJSON.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", apperrors.ErrFailedToDecodeRequest, err)
	}
	return v, nil
}
