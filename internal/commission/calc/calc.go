// Package calc evaluates commission amounts against the rate tables. It is
// pure: no storage, no side effects.
package calc

import (
	"math"
	"strconv"

	"github.com/suryashakti/partner-crm/internal/commission/domain"
	"github.com/suryashakti/partner-crm/internal/config"
)

// Installation computes the commission for a completed installation.
//
// DCR panels use the fixed-amount table for known capacities and fall back to
// the DCR per-kW rate otherwise. Non-DCR panels are always flat per-kW.
func Installation(rates config.CommissionRates, panelType domain.PanelType, capacityKw float64, partnerType domain.PartnerType) (int64, error) {
	if !partnerType.Valid() {
		return 0, domain.ErrInvalidPartnerType
	}
	if capacityKw <= 0 {
		return 0, domain.ErrInvalidCapacity
	}

	switch panelType {
	case domain.PanelDCR:
		if fixed, ok := rates.DcrFixed[string(partnerType)][capacityKey(capacityKw)]; ok {
			return fixed, nil
		}
		return perKw(rates.DcrPerKw[string(partnerType)], capacityKw), nil
	case domain.PanelNonDCR:
		return perKw(rates.NonDcrPerKw[string(partnerType)], capacityKw), nil
	default:
		return 0, domain.ErrInvalidPanelType
	}
}

// Inverter returns the flat per-unit commission for an inverter sale.
func Inverter(rates config.CommissionRates, partnerType domain.PartnerType) (int64, error) {
	if !partnerType.Valid() {
		return 0, domain.ErrInvalidPartnerType
	}
	return rates.InverterPerUnit[string(partnerType)], nil
}

func perKw(rate int64, capacityKw float64) int64 {
	return int64(math.Round(capacityKw * float64(rate)))
}

// capacityKey canonicalizes a capacity for fixed-table lookup: 3.0 -> "3".
func capacityKey(capacityKw float64) string {
	return strconv.FormatFloat(capacityKw, 'f', -1, 64)
}
