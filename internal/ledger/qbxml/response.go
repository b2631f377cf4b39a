package qbxml

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

// responseElement locates the response for an add request and checks its
// status attributes. Any non-zero status is a failed call.
func responseElement(doc *etree.Document, op, rsName string) (*etree.Element, error) {
	rs := doc.FindElement("//QBXMLMsgsRs/" + rsName)
	if rs == nil {
		return nil, &ledger.Error{Op: op, Message: "response missing " + rsName}
	}
	code := statusCode(rs)
	if code != 0 {
		return nil, &ledger.Error{Op: op, Code: code, Message: statusMessage(rs)}
	}
	return rs, nil
}

// queryElement is responseElement for queries, where status 1 means "no
// matching object" rather than failure.
func queryElement(doc *etree.Document, op, rsName string) (*etree.Element, bool, error) {
	rs := doc.FindElement("//QBXMLMsgsRs/" + rsName)
	if rs == nil {
		return nil, false, &ledger.Error{Op: op, Message: "response missing " + rsName}
	}
	switch code := statusCode(rs); code {
	case 0:
		return rs, true, nil
	case 1:
		return nil, false, nil
	default:
		return nil, false, &ledger.Error{Op: op, Code: code, Message: statusMessage(rs)}
	}
}

func statusCode(rs *etree.Element) int {
	code, err := strconv.Atoi(rs.SelectAttrValue("statusCode", "0"))
	if err != nil {
		return -1
	}
	return code
}

func statusMessage(rs *etree.Element) string {
	if msg := rs.SelectAttrValue("statusMessage", ""); msg != "" {
		return msg
	}
	return "request failed"
}

// txnID extracts the assigned transaction ID from an add response.
func txnID(rs *etree.Element, op, retName string) (string, error) {
	id := rs.FindElement("./" + retName + "/TxnID")
	if id == nil {
		return "", &ledger.Error{Op: op, Message: "response missing TxnID"}
	}
	return id.Text(), nil
}

// elementTexts collects <retName>/<field> texts, e.g. account full names.
func elementTexts(rs *etree.Element, retName, field string) []string {
	var out []string
	for _, e := range rs.FindElements("./" + retName) {
		if f := e.FindElement("./" + field); f != nil {
			out = append(out, f.Text())
		}
	}
	return out
}

// matchTransaction scans TransactionRet results for one matching the query.
// Reference queries were filtered server-side, so any result matches; the
// heuristic path still compares the kind and amount client-side.
func matchTransaction(rs *etree.Element, q ledger.Query) (ledger.Entry, bool, error) {
	for _, ret := range rs.FindElements("./TransactionRet") {
		entry, err := parseTransactionRet(ret)
		if err != nil {
			return ledger.Entry{}, false, err
		}
		if q.Reference != "" {
			return entry, true, nil
		}
		if q.Kind != "" && entry.Kind != q.Kind {
			continue
		}
		if entry.Amount.Abs().Equal(q.Amount.Abs()) {
			return entry, true, nil
		}
	}
	return ledger.Entry{}, false, nil
}

func parseTransactionRet(ret *etree.Element) (ledger.Entry, error) {
	entry := ledger.Entry{
		TxnID:     childText(ret, "TxnID"),
		Reference: childText(ret, "RefNumber"),
		Kind:      kindOf(childText(ret, "TxnType")),
	}
	if entity := ret.FindElement("./EntityRef/FullName"); entity != nil {
		entry.Counterparty = entity.Text()
	}
	if raw := childText(ret, "TxnDate"); raw != "" {
		date, err := time.Parse(txnDateFormat, raw)
		if err != nil {
			return ledger.Entry{}, &ledger.Error{Op: "transaction query", Message: "bad TxnDate " + raw}
		}
		entry.Date = date
	}
	if raw := childText(ret, "Amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return ledger.Entry{}, &ledger.Error{Op: "transaction query", Message: "bad Amount " + raw}
		}
		entry.Amount = amount
	}
	return entry, nil
}

func childText(e *etree.Element, name string) string {
	if c := e.FindElement("./" + name); c != nil {
		return c.Text()
	}
	return ""
}

func kindOf(txnType string) model.Kind {
	switch txnType {
	case "Check":
		return model.KindCheque
	case "Deposit":
		return model.KindDeposit
	case "Bill":
		return model.KindBill
	default:
		return ""
	}
}
