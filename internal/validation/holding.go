package validation

import (
	"strings"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// ValidateCreateHolding checks the structural fields of a new holding.
// Prices and amount are not range checked: negative and zero values are accepted.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = apperrors.ErrInvalidName.Error()
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if req.PurchaseDate != "" {
		if _, err := model.ParseDate(req.PurchaseDate); err != nil {
			errors["purchaseDate"] = apperrors.ErrInvalidDate.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
