// Package classify maps parsed Float records onto target ledger
// transactions: card purchases become cheques on the bank account, interest
// and refund credits become deposits, and reimbursements become unpaid
// vendor bills on the payables account.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// Error is a row-scoped classification failure. The row is reported and
// skipped; the run continues.
type Error struct {
	Category model.Category
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("category %q: %s", e.Category, e.Reason)
}

// Classifier resolves records against the configured account names.
type Classifier struct {
	accounts config.AccountsConfig
}

// New creates a Classifier.
func New(accounts config.AccountsConfig) *Classifier {
	return &Classifier{accounts: accounts}
}

// Classify is a pure mapping from a record to its ledger transaction.
// Float lists purchases with a positive total and credits to the card
// (interest, refunds) with a negative one; posted amounts are always
// absolute values.
func (c *Classifier) Classify(rec model.FloatRecord) (model.Classified, error) {
	txn, err := c.resolve(rec)
	if err != nil {
		return model.Classified{}, err
	}
	txn.Reference = rec.Reference
	if txn.Reference == "" {
		name := txn.Payee
		if name == "" {
			name = rec.Merchant
		}
		txn.Reference = syntheticRef(rec.Date, name)
	}
	return txn, nil
}

func (c *Classifier) resolve(rec model.FloatRecord) (model.Classified, error) {
	switch rec.Category {
	case model.CategoryInterest:
		return c.deposit(rec, c.accounts.InterestIncome), nil

	case model.CategoryRefund:
		if !rec.Total.IsNegative() {
			return model.Classified{}, &Error{Category: rec.Category, Reason: "refund without a credit amount"}
		}
		return c.deposit(rec, c.accounts.DefaultExpense), nil

	case model.CategoryPurchase:
		return model.Classified{
			Record:  rec,
			Kind:    model.KindCheque,
			Account: c.accounts.Bank,
			Payee:   rec.Merchant,
			Amount:  rec.Total.Abs(),
			Lines:   c.expenseLines(rec),
		}, nil

	case model.CategoryReimbursement:
		// Always an unpaid bill: the export carries no paid/unpaid signal,
		// so none is inferred.
		if rec.Spender == "" {
			return model.Classified{}, &Error{Category: rec.Category, Reason: "reimbursement without a spender"}
		}
		return model.Classified{
			Record:  rec,
			Kind:    model.KindBill,
			Account: c.accounts.Payables,
			Payee:   rec.Spender,
			Amount:  rec.Total.Abs(),
			Lines:   c.expenseLines(rec),
		}, nil

	default:
		return model.Classified{}, &Error{Category: rec.Category, Reason: "unknown category"}
	}
}

func (c *Classifier) deposit(rec model.FloatRecord, fallbackAccount string) model.Classified {
	amount := rec.Total.Abs()
	return model.Classified{
		Record:  rec,
		Kind:    model.KindDeposit,
		Account: c.accounts.Bank,
		Amount:  amount,
		Lines: []model.Line{
			{Account: glOr(rec.GLCode, fallbackAccount), Amount: amount, Memo: rec.Description},
		},
	}
}

// expenseLines builds the expense side of a cheque or bill: the row's GL
// account for the subtotal, plus a GST line when the export carries tax.
func (c *Classifier) expenseLines(rec model.FloatRecord) []model.Line {
	amount := rec.Subtotal
	if amount.IsZero() {
		amount = rec.Total.Abs().Sub(rec.Tax.Abs())
	}

	lines := []model.Line{
		{Account: glOr(rec.GLCode, c.accounts.DefaultExpense), Amount: amount, Memo: rec.Description},
	}
	if !rec.Tax.IsZero() {
		lines = append(lines, model.Line{
			Account: c.accounts.GST,
			Amount:  rec.Tax.Abs(),
			Memo:    "Half of the GST",
		})
	}
	return lines
}

func glOr(glCode, fallback string) string {
	if glCode != "" {
		return glCode
	}
	return fallback
}

// syntheticRef builds a stable reference like float_20250103_GITHUBPROS for
// rows the export left without a transaction ID. Deterministic, so repeat
// imports of the same file produce the same reference.
func syntheticRef(date time.Time, counterparty string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, counterparty)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("float_%s_%s", date.Format("20060102"), strings.ToUpper(prefix))
}
