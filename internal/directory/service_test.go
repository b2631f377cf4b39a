package directory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/ledger/ledgertest"
	"github.com/float2qb-dev/float2qb/internal/model"
)

func TestService_Lookups(t *testing.T) {
	s := New([]string{"Float Financial", "Office Supplies"}, []string{"GITHUB"})

	assert.True(t, s.AccountExists("Float Financial"))
	assert.False(t, s.AccountExists("Petty Cash"))
	assert.True(t, s.VendorExists("GITHUB"))
	assert.False(t, s.VendorExists("A. Lee"))
}

func TestLoad_FromLedger(t *testing.T) {
	fake := ledgertest.New([]string{"Float Financial"}, []string{"GITHUB"})

	s, err := Load(fake)
	require.NoError(t, err)
	assert.True(t, s.AccountExists("Float Financial"))
	assert.True(t, s.VendorExists("GITHUB"))
}

func TestLoad_ConnectionError(t *testing.T) {
	fake := ledgertest.New(nil, nil)
	fake.Unreachable = true

	_, err := Load(fake)
	require.ErrorIs(t, err, ledger.ErrConnection)
}

func TestCheck_AllKnown(t *testing.T) {
	s := New(
		[]string{"Float Financial", "Software & Subscriptions", "GST Accounts Receivable"},
		[]string{"GITHUB"},
	)

	missingAccounts, missingVendors := s.Check([]model.Classified{{
		Kind:    model.KindCheque,
		Account: "Float Financial",
		Payee:   "GITHUB",
		Lines: []model.Line{
			{Account: "Software & Subscriptions", Amount: decimal.RequireFromString("4.00")},
			{Account: "GST Accounts Receivable", Amount: decimal.RequireFromString("0.20")},
		},
	}})

	assert.Nil(t, missingAccounts)
	assert.Nil(t, missingVendors)
}

func TestCheck_ReportsMissingSortedAndDeduplicated(t *testing.T) {
	s := New([]string{"Float Financial"}, nil)

	txns := []model.Classified{
		{
			Account: "Float Financial",
			Payee:   "GITHUB",
			Lines:   []model.Line{{Account: "Software & Subscriptions"}},
		},
		{
			Account: "Accounts Payable",
			Payee:   "A. Lee",
			Lines:   []model.Line{{Account: "Meals & Entertainment"}},
		},
		{
			// Same missing names again, reported once.
			Account: "Accounts Payable",
			Payee:   "A. Lee",
			Lines:   []model.Line{{Account: "Meals & Entertainment"}},
		},
	}

	missingAccounts, missingVendors := s.Check(txns)
	assert.Equal(t, []string{"Accounts Payable", "Meals & Entertainment", "Software & Subscriptions"}, missingAccounts)
	assert.Equal(t, []string{"A. Lee", "GITHUB"}, missingVendors)
}

func TestCheck_DepositsHaveNoPayee(t *testing.T) {
	s := New([]string{"Float Financial", "Other Income:Interest Income"}, nil)

	missingAccounts, missingVendors := s.Check([]model.Classified{{
		Kind:    model.KindDeposit,
		Account: "Float Financial",
		Lines:   []model.Line{{Account: "Other Income:Interest Income"}},
	}})

	assert.Nil(t, missingAccounts)
	assert.Nil(t, missingVendors)
}
