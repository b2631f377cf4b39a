// Package directory caches the ledger's active account and vendor names so
// a whole batch can be pre-checked before anything is posted. A GL code or
// payee the company file does not know would otherwise fail row after row.
package directory

import (
	"fmt"
	"sort"

	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// Service provides in-memory lookup over ledger names.
type Service struct {
	accounts map[string]bool
	vendors  map[string]bool
}

// New creates a Service from name lists.
func New(accounts, vendors []string) *Service {
	s := &Service{
		accounts: make(map[string]bool, len(accounts)),
		vendors:  make(map[string]bool, len(vendors)),
	}
	for _, a := range accounts {
		s.accounts[a] = true
	}
	for _, v := range vendors {
		s.vendors[v] = true
	}
	return s
}

// Load queries the ledger for its active accounts and vendors.
func Load(l ledger.Ledger) (*Service, error) {
	accounts, err := l.Accounts()
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	vendors, err := l.Vendors()
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	return New(accounts, vendors), nil
}

// AccountExists reports whether the ledger knows an account full name.
func (s *Service) AccountExists(name string) bool {
	return s.accounts[name]
}

// VendorExists reports whether the ledger knows a vendor name.
func (s *Service) VendorExists(name string) bool {
	return s.vendors[name]
}

// Check collects the account and payee names a batch references that the
// ledger does not know. Deduplicated and sorted for stable reporting.
func (s *Service) Check(txns []model.Classified) (missingAccounts, missingVendors []string) {
	accounts := make(map[string]bool)
	vendors := make(map[string]bool)

	for _, txn := range txns {
		if !s.AccountExists(txn.Account) {
			accounts[txn.Account] = true
		}
		for _, line := range txn.Lines {
			if !s.AccountExists(line.Account) {
				accounts[line.Account] = true
			}
		}
		if txn.Payee != "" && !s.VendorExists(txn.Payee) {
			vendors[txn.Payee] = true
		}
	}

	return sortedKeys(accounts), sortedKeys(vendors)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
