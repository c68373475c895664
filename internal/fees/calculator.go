package fees

import (
	"github.com/shopspring/decimal"

	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

// Quote is the breakdown of a funding amount. All fields share the unit of
// the raw amount passed in.
type Quote struct {
	BaseAmount decimal.Decimal `json:"base_amount"`
	Fee        decimal.Decimal `json:"fee"`
	Total      decimal.Decimal `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// QuoteFunding computes the platform fee and charged total for a raw amount.
// Pure and deterministic: donation intake and task funding both call it and
// their quoted totals must agree exactly for identical inputs. Amounts below
// the minimum are rejected, never clamped.
func QuoteFunding(rawAmount, platformFeePercent, minimumAmount decimal.Decimal) (*Quote, error) {
	if rawAmount.LessThan(minimumAmount) {
		return nil, apperrors.NewValidationError("minimum_amount",
			"amount %s is below the minimum of %s", rawAmount.String(), minimumAmount.String())
	}

	fee := rawAmount.Mul(platformFeePercent).Div(hundred)
	return &Quote{
		BaseAmount: rawAmount,
		Fee:        fee,
		Total:      rawAmount.Add(fee),
	}, nil
}
