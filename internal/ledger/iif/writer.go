// Package iif is the offline ledger backend: instead of posting through the
// qbXML gateway it writes a QuickBooks IIF batch file to be imported by
// hand. IIF is write-only, so duplicate lookups can only see transactions
// written earlier in the same run.
package iif

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// Header is the IIF transaction template header.
const Header = "!TRNS\tTRNSID\tTRNSTYPE\tDATE\tACCNT\tNAME\tCLASS\tAMOUNT\tDOCNUM\tMEMO\tCLEAR\tTOPRINT\n" +
	"!SPL\tSPLID\tTRNSTYPE\tDATE\tACCNT\tNAME\tCLASS\tAMOUNT\tDOCNUM\tMEMO\tCLEAR\n" +
	"!ENDTRNS\n"

const iifDateFormat = "01/02/06"

// Writer implements ledger.Ledger against an IIF file.
type Writer struct {
	w       io.Writer
	f       *os.File // set when the Writer owns the file
	entries []ledger.Entry
	nextID  int
}

// New writes the IIF header and returns a Writer over w.
func New(w io.Writer) (*Writer, error) {
	if _, err := io.WriteString(w, Header); err != nil {
		return nil, fmt.Errorf("writing IIF header: %w", err)
	}
	return &Writer{w: w}, nil
}

// Create opens path for writing and returns a Writer that owns the file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating IIF file: %w", err)
	}
	w, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.f = f
	return w, nil
}

// CreateCheque writes a CHEQUE block. The header amount is negative (money
// out of the bank account), the splits positive.
func (w *Writer) CreateCheque(p ledger.ChequeParams) (string, error) {
	id, err := w.block("CHEQUE", p.Date.Format(iifDateFormat), p.BankAccount, p.Payee, p.Reference,
		p.Memo, sum(p.Lines).Neg(), p.Lines, false)
	if err != nil {
		return "", err
	}
	w.record(model.KindCheque, p.Reference, p.Payee, p.Date, sum(p.Lines))
	return id, nil
}

// CreateDeposit writes a DEPOSIT block with a positive header amount.
func (w *Writer) CreateDeposit(p ledger.DepositParams) (string, error) {
	id, err := w.block("DEPOSIT", p.Date.Format(iifDateFormat), p.BankAccount, "", p.Reference,
		p.Memo, sum(p.Lines), p.Lines, true)
	if err != nil {
		return "", err
	}
	// No counterparty: deposit lookups match on kind, date and amount.
	w.record(model.KindDeposit, p.Reference, "", p.Date, sum(p.Lines))
	return id, nil
}

// CreateBill writes a BILL block against the payables account.
func (w *Writer) CreateBill(p ledger.BillParams) (string, error) {
	id, err := w.block("BILL", p.Date.Format(iifDateFormat), p.PayablesAccount, p.Vendor, p.Reference,
		p.Memo, sum(p.Lines).Neg(), p.Lines, false)
	if err != nil {
		return "", err
	}
	w.record(model.KindBill, p.Reference, p.Vendor, p.Date, sum(p.Lines))
	return id, nil
}

// Find matches only transactions written by this run.
func (w *Writer) Find(q ledger.Query) (ledger.Entry, bool, error) {
	for _, e := range w.entries {
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

// Accounts returns nothing: there is no application to enumerate offline.
func (w *Writer) Accounts() ([]string, error) { return nil, nil }

// Vendors returns nothing: there is no application to enumerate offline.
func (w *Writer) Vendors() ([]string, error) { return nil, nil }

// Close closes the underlying file when the Writer owns it.
func (w *Writer) Close() error {
	if w.f != nil {
		return w.f.Close()
	}
	return nil
}

// block writes one TRNS ... SPL ... ENDTRNS group. Split amounts carry the
// opposite sign of the header so the group nets to zero.
func (w *Writer) block(trnsType, date, account, name, docNum, memo string,
	headerAmount decimal.Decimal, lines []model.Line, negateSplits bool) (string, error) {

	w.nextID++
	id := fmt.Sprintf("IIF-%d", w.nextID)

	_, err := fmt.Fprintf(w.w, "TRNS\t\t%s\t%s\t%s\t%s\t\t%s\t%s\t%s\tY\tN\n",
		trnsType, date, account, name, headerAmount.StringFixed(2), docNum, memo)
	if err != nil {
		return "", fmt.Errorf("writing TRNS: %w", err)
	}

	for _, line := range lines {
		amount := line.Amount
		if negateSplits {
			amount = amount.Neg()
		}
		_, err := fmt.Fprintf(w.w, "SPL\t\t%s\t%s\t%s\t\t\t%s\t\t%s\tY\n",
			trnsType, date, line.Account, amount.StringFixed(2), line.Memo)
		if err != nil {
			return "", fmt.Errorf("writing SPL: %w", err)
		}
	}

	if _, err := io.WriteString(w.w, "ENDTRNS\n"); err != nil {
		return "", fmt.Errorf("writing ENDTRNS: %w", err)
	}
	return id, nil
}

func (w *Writer) record(kind model.Kind, ref, counterparty string, date time.Time, amount decimal.Decimal) {
	w.entries = append(w.entries, ledger.Entry{
		TxnID:        fmt.Sprintf("IIF-%d", w.nextID),
		Kind:         kind,
		Reference:    ref,
		Date:         date,
		Amount:       amount,
		Counterparty: counterparty,
	})
}

func sum(lines []model.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

var _ ledger.Ledger = (*Writer)(nil)
