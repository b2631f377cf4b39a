package qbxml

import (
	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/float2qb-dev/float2qb/internal/ledger"
)

const txnDateFormat = "2006-01-02"

// newRequestSet builds the qbXML envelope and returns the document plus the
// QBXMLMsgsRq element requests are appended to. Errors inside the set do
// not abort later requests in the same envelope.
func newRequestSet() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateProcInst("qbxml", `version="`+qbxmlVersion+`"`)
	root := doc.CreateElement("QBXML")
	rq := root.CreateElement("QBXMLMsgsRq")
	rq.CreateAttr("onError", "continueOnError")
	return doc, rq
}

func appendRq(parent *etree.Element, name string) *etree.Element {
	e := parent.CreateElement(name)
	e.CreateAttr("requestID", uuid.NewString())
	return e
}

func setText(parent *etree.Element, name, value string) {
	parent.CreateElement(name).SetText(value)
}

func setRef(parent *etree.Element, name, fullName string) {
	ref := parent.CreateElement(name)
	setText(ref, "FullName", fullName)
}

func setAmount(parent *etree.Element, name string, amount decimal.Decimal) {
	setText(parent, name, amount.StringFixed(2))
}

// CreateCheque posts a CheckAdd and returns the TxnID QuickBooks assigned.
func (c *Client) CreateCheque(p ledger.ChequeParams) (string, error) {
	doc, rq := newRequestSet()
	add := appendRq(rq, "CheckAddRq").CreateElement("CheckAdd")
	setRef(add, "AccountRef", p.BankAccount)
	setRef(add, "PayeeEntityRef", p.Payee)
	setText(add, "RefNumber", refNumber(p.Reference))
	setText(add, "TxnDate", p.Date.Format(txnDateFormat))
	setText(add, "Memo", p.Memo)
	setText(add, "IsToBePrinted", "false")
	for _, line := range p.Lines {
		exp := add.CreateElement("ExpenseLineAdd")
		setRef(exp, "AccountRef", line.Account)
		setAmount(exp, "Amount", line.Amount)
		setText(exp, "Memo", line.Memo)
	}

	rs, err := c.roundTrip("cheque add", "CheckAddRs", doc)
	if err != nil {
		return "", err
	}
	return txnID(rs, "cheque add", "CheckRet")
}

// CreateDeposit posts a DepositAdd and returns the assigned TxnID. qbXML
// deposits accept no RefNumber, so the reference cannot be stored and
// duplicate lookups for deposits go through the heuristic instead.
func (c *Client) CreateDeposit(p ledger.DepositParams) (string, error) {
	doc, rq := newRequestSet()
	add := appendRq(rq, "DepositAddRq").CreateElement("DepositAdd")
	setRef(add, "DepositToAccountRef", p.BankAccount)
	setText(add, "TxnDate", p.Date.Format(txnDateFormat))
	setText(add, "Memo", p.Memo)
	for _, line := range p.Lines {
		dep := add.CreateElement("DepositLineAdd")
		setRef(dep, "AccountRef", line.Account)
		setText(dep, "Memo", line.Memo)
		setAmount(dep, "Amount", line.Amount)
	}

	rs, err := c.roundTrip("deposit add", "DepositAddRs", doc)
	if err != nil {
		return "", err
	}
	return txnID(rs, "deposit add", "DepositRet")
}

// CreateBill posts a BillAdd (unpaid, against the payables account) and
// returns the assigned TxnID.
func (c *Client) CreateBill(p ledger.BillParams) (string, error) {
	doc, rq := newRequestSet()
	add := appendRq(rq, "BillAddRq").CreateElement("BillAdd")
	setRef(add, "VendorRef", p.Vendor)
	setRef(add, "APAccountRef", p.PayablesAccount)
	setText(add, "TxnDate", p.Date.Format(txnDateFormat))
	setText(add, "RefNumber", refNumber(p.Reference))
	setText(add, "Memo", p.Memo)
	for _, line := range p.Lines {
		exp := add.CreateElement("ExpenseLineAdd")
		setRef(exp, "AccountRef", line.Account)
		setAmount(exp, "Amount", line.Amount)
		setText(exp, "Memo", line.Memo)
	}

	rs, err := c.roundTrip("bill add", "BillAddRs", doc)
	if err != nil {
		return "", err
	}
	return txnID(rs, "bill add", "BillRet")
}

// Find looks up an existing transaction via TransactionQuery: by RefNumber
// when the query carries one, else by date and entity with the amount and
// kind compared client-side. Deposit queries carry no entity; the date
// range alone narrows them.
func (c *Client) Find(q ledger.Query) (ledger.Entry, bool, error) {
	doc, rq := newRequestSet()
	query := appendRq(rq, "TransactionQueryRq")
	if q.Reference != "" {
		// Same truncation as the writes, so lookups see what was stored.
		setText(query, "RefNumber", refNumber(q.Reference))
	} else {
		dates := query.CreateElement("TransactionDateRangeFilter")
		setText(dates, "FromTxnDate", q.Date.Format(txnDateFormat))
		setText(dates, "ToTxnDate", q.Date.Format(txnDateFormat))
		if q.Counterparty != "" {
			entity := query.CreateElement("TransactionEntityFilter")
			setText(entity, "FullName", q.Counterparty)
		}
	}

	resp, err := c.send(doc)
	if err != nil {
		return ledger.Entry{}, false, err
	}
	rs, found, err := queryElement(resp, "transaction query", "TransactionQueryRs")
	if err != nil || !found {
		return ledger.Entry{}, false, err
	}
	return matchTransaction(rs, q)
}

// Accounts returns the full names of active accounts in the company file.
func (c *Client) Accounts() ([]string, error) {
	doc, rq := newRequestSet()
	query := appendRq(rq, "AccountQueryRq")
	setText(query, "ActiveStatus", "ActiveOnly")

	resp, err := c.send(doc)
	if err != nil {
		return nil, err
	}
	rs, found, err := queryElement(resp, "account query", "AccountQueryRs")
	if err != nil || !found {
		return nil, err
	}
	return elementTexts(rs, "AccountRet", "FullName"), nil
}

// Vendors returns the names of active vendors in the company file.
func (c *Client) Vendors() ([]string, error) {
	doc, rq := newRequestSet()
	query := appendRq(rq, "VendorQueryRq")
	setText(query, "ActiveStatus", "ActiveOnly")

	resp, err := c.send(doc)
	if err != nil {
		return nil, err
	}
	rs, found, err := queryElement(resp, "vendor query", "VendorQueryRs")
	if err != nil || !found {
		return nil, err
	}
	return elementTexts(rs, "VendorRet", "Name"), nil
}

// refNumber truncates references to QuickBooks' 11-character RefNumber
// limit, keeping the distinctive tail.
func refNumber(ref string) string {
	if len(ref) <= 11 {
		return ref
	}
	return ref[len(ref)-11:]
}

var _ ledger.Ledger = (*Client)(nil)
