package fees

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

func TestQuoteFunding(t *testing.T) {
	quote, err := QuoteFunding(decimal.NewFromInt(100), decimal.NewFromInt(1), decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.True(t, quote.BaseAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, quote.Fee.Equal(decimal.NewFromInt(1)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(101)))
}

func TestQuoteFundingBelowMinimum(t *testing.T) {
	_, err := QuoteFunding(decimal.NewFromInt(5), decimal.NewFromInt(1), decimal.NewFromInt(10))
	require.Error(t, err)

	var validationErr *apperrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "minimum_amount", validationErr.Requirement)
	assert.Contains(t, validationErr.Message, "10")
}

func TestQuoteFundingDeterministic(t *testing.T) {
	// donation intake and task funding quote independently; the results must
	// agree exactly for identical inputs
	raw := decimal.RequireFromString("33.33")
	pct := decimal.RequireFromString("2.5")
	min := decimal.NewFromInt(10)

	first, err := QuoteFunding(raw, pct, min)
	require.NoError(t, err)
	second, err := QuoteFunding(raw, pct, min)
	require.NoError(t, err)

	assert.True(t, first.Fee.Equal(second.Fee))
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Total.Equal(first.BaseAmount.Add(first.Fee)))
}

func TestQuoteFundingAtMinimum(t *testing.T) {
	quote, err := QuoteFunding(decimal.NewFromInt(10), decimal.NewFromInt(1), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, quote.BaseAmount.Equal(decimal.NewFromInt(10)))
}
