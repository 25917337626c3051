package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// ICurrencyDirectory is the read-only view of the currency directory used by
// the market derivation pipeline.
// -----------------------------------------------------------------------------

type ICurrencyDirectory interface {

	// GetCurrencyInfo looks a code up case-insensitively.
	GetCurrencyInfo(code string) (models.MCurrencyInfo, bool)

	// SelectedCurrency is the active display (secondary) currency code.
	SelectedCurrency() string
}
