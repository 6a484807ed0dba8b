package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/backoffice/internal/logging"
	"github.com/JonMunkholm/backoffice/internal/store"
)

const (
	msgAllergenIDRequired = "Allergen ID is required"
	msgAllergenNotFound   = "Allergen not found"
	msgAllergenForbidden  = "Forbidden - You don't have access to this allergen"
	msgAllergenDelete     = "Failed to delete allergen"
)

// DeleteAllergen removes an allergen on behalf of userID.
//
// The allergen is resolved through its location to the owning merchant and
// the caller must hold an active membership there. Menu item links are
// removed by the database cascade. The audit entry is best-effort.
func (s *Service) DeleteAllergen(ctx context.Context, userID, allergenID string) error {
	if userID == "" {
		return newError(KindUnauthorized, msgUnauthorized, nil)
	}
	allergenID = strings.TrimSpace(allergenID)
	if allergenID == "" {
		return newError(KindBadRequest, msgAllergenIDRequired, nil)
	}

	allergen, err := s.store.GetAllergen(ctx, allergenID)
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, msgAllergenNotFound, nil)
	}
	if err != nil {
		return newError(KindInternal, msgAllergenDelete, err)
	}

	ok, err := s.store.HasActiveMembership(ctx, userID, allergen.MerchantID)
	if err != nil {
		return newError(KindInternal, msgAllergenDelete, err)
	}
	if !ok {
		logging.WithFields(ctx, "allergen_id", allergenID, "merchant_id", allergen.MerchantID).
			Warn("allergen delete denied")
		return newError(KindForbidden, msgAllergenForbidden, nil)
	}

	if err := s.store.DeleteAllergen(ctx, allergenID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(KindNotFound, msgAllergenNotFound, nil)
		}
		return newError(KindInternal, msgAllergenDelete, err)
	}

	logging.WithFields(ctx, "allergen_id", allergenID, "location_id", allergen.LocationID).
		Info("allergen deleted")

	s.logAuditBestEffort(ctx, AuditLogParams{
		Action:     ActionAllergenDelete,
		UserID:     userID,
		EntityType: "allergen",
		EntityID:   allergenID,
		Reason:     allergen.Name,
	})
	return nil
}
