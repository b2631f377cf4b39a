// Package ledgertest provides an in-memory Ledger so classification and
// dedupe logic can be exercised without a running accounting application.
package ledgertest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// Fake is an in-memory ledger. Like the real application, creates against
// an unknown account or vendor fail.
type Fake struct {
	accounts map[string]bool
	vendors  map[string]bool
	entries  []ledger.Entry
	nextID   int
	closed   bool

	// FailNext, when set, makes the next create call return this error.
	FailNext error
	// Unreachable makes every call fail with ErrConnection.
	Unreachable bool
}

// New creates a Fake seeded with active account and vendor names.
func New(accounts, vendors []string) *Fake {
	f := &Fake{
		accounts: make(map[string]bool, len(accounts)),
		vendors:  make(map[string]bool, len(vendors)),
	}
	for _, a := range accounts {
		f.accounts[a] = true
	}
	for _, v := range vendors {
		f.vendors[v] = true
	}
	return f
}

// Entries returns every transaction created so far.
func (f *Fake) Entries() []ledger.Entry {
	return f.entries
}

// Seed inserts an existing entry without going through a create call.
func (f *Fake) Seed(e ledger.Entry) {
	f.entries = append(f.entries, e)
}

// CreateCheque records a cheque and returns its transaction ID.
func (f *Fake) CreateCheque(p ledger.ChequeParams) (string, error) {
	if err := f.gate("cheque add", p.BankAccount, p.Lines); err != nil {
		return "", err
	}
	return f.add(model.KindCheque, p.Reference, p.Payee, ledger.Entry{
		Date: p.Date, Amount: sum(p.Lines),
	}), nil
}

// CreateDeposit records a deposit and returns its transaction ID. Like the
// real application, the stored entry carries no reference and no
// counterparty; deposit lookups only work through the heuristic.
func (f *Fake) CreateDeposit(p ledger.DepositParams) (string, error) {
	if err := f.gate("deposit add", p.BankAccount, p.Lines); err != nil {
		return "", err
	}
	return f.add(model.KindDeposit, "", "", ledger.Entry{
		Date: p.Date, Amount: sum(p.Lines),
	}), nil
}

// CreateBill records an unpaid bill and returns its transaction ID.
func (f *Fake) CreateBill(p ledger.BillParams) (string, error) {
	if err := f.gate("bill add", p.PayablesAccount, p.Lines); err != nil {
		return "", err
	}
	if !f.vendors[p.Vendor] {
		return "", &ledger.Error{Op: "bill add", Message: fmt.Sprintf("unknown vendor %q", p.Vendor)}
	}
	return f.add(model.KindBill, p.Reference, p.Vendor, ledger.Entry{
		Date: p.Date, Amount: sum(p.Lines),
	}), nil
}

// Find matches by reference when set, else by (kind, date, amount,
// counterparty).
func (f *Fake) Find(q ledger.Query) (ledger.Entry, bool, error) {
	if f.Unreachable {
		return ledger.Entry{}, false, ledger.ErrConnection
	}
	for _, e := range f.entries {
		if q.Reference != "" {
			if e.Reference == q.Reference {
				return e, true, nil
			}
			continue
		}
		if q.Kind != "" && e.Kind != q.Kind {
			continue
		}
		if e.Date.Equal(q.Date) && e.Amount.Equal(q.Amount) && e.Counterparty == q.Counterparty {
			return e, true, nil
		}
	}
	return ledger.Entry{}, false, nil
}

// Accounts returns the seeded active account names.
func (f *Fake) Accounts() ([]string, error) {
	if f.Unreachable {
		return nil, ledger.ErrConnection
	}
	return keys(f.accounts), nil
}

// Vendors returns the seeded active vendor names.
func (f *Fake) Vendors() ([]string, error) {
	if f.Unreachable {
		return nil, ledger.ErrConnection
	}
	return keys(f.vendors), nil
}

// Close marks the session released.
func (f *Fake) Close() error {
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool { return f.closed }

func (f *Fake) gate(op, account string, lines []model.Line) error {
	if f.Unreachable {
		return ledger.ErrConnection
	}
	if f.FailNext != nil {
		err := f.FailNext
		f.FailNext = nil
		return err
	}
	if !f.accounts[account] {
		return &ledger.Error{Op: op, Message: fmt.Sprintf("unknown account %q", account)}
	}
	for _, l := range lines {
		if !f.accounts[l.Account] {
			return &ledger.Error{Op: op, Message: fmt.Sprintf("unknown account %q", l.Account)}
		}
	}
	return nil
}

func (f *Fake) add(kind model.Kind, ref, counterparty string, e ledger.Entry) string {
	f.nextID++
	e.TxnID = fmt.Sprintf("TXN-%d", f.nextID)
	e.Kind = kind
	e.Reference = ref
	e.Counterparty = counterparty
	f.entries = append(f.entries, e)
	return e.TxnID
}

func sum(lines []model.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
