package qbxml

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/ledger"
	"github.com/float2qb-dev/float2qb/internal/model"
)

const hostQueryRs = `<HostQueryRs statusCode="0" statusSeverity="Info"><HostRet><ProductName>QuickBooks Desktop</ProductName></HostRet></HostQueryRs>`

func envelope(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?><QBXML><QBXMLMsgsRs>` + inner + `</QBXMLMsgsRs></QBXML>`
}

// gateway runs a fake qbXML gateway. Host queries (sent by Dial) always
// succeed; everything else goes through respond with the raw request body.
func gateway(t *testing.T, respond func(body string) string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body := string(raw)
		if strings.Contains(body, "HostQueryRq") {
			io.WriteString(w, envelope(hostQueryRs))
			return
		}
		io.WriteString(w, respond(body))
	}))
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	c, err := Dial(config.GatewayConfig{URL: srv.URL, AppName: "float2qb", TimeoutSeconds: 5}, log)
	require.NoError(t, err)
	return c
}

func chequeParams() ledger.ChequeParams {
	return ledger.ChequeParams{
		BankAccount: "Float Financial",
		Payee:       "GITHUB",
		Reference:   "FLT-10231",
		Date:        time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Memo:        "GitHub Pro subscription",
		Lines: []model.Line{
			{Account: "Software & Subscriptions", Amount: decimal.RequireFromString("4.00")},
			{Account: "GST Accounts Receivable", Amount: decimal.RequireFromString("0.20"), Memo: "Half of the GST"},
		},
	}
}

func TestDial_GatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := Dial(config.GatewayConfig{URL: srv.URL, TimeoutSeconds: 1}, log)
	require.ErrorIs(t, err, ledger.ErrConnection)
}

func TestDial_GatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no QuickBooks session", http.StatusBadGateway)
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := Dial(config.GatewayConfig{URL: srv.URL, TimeoutSeconds: 1}, log)
	require.ErrorIs(t, err, ledger.ErrConnection)
}

func TestCreateCheque(t *testing.T) {
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<CheckAddRs statusCode="0"><CheckRet><TxnID>8A1-1735</TxnID></CheckRet></CheckAddRs>`)
	})

	id, err := c.CreateCheque(chequeParams())
	require.NoError(t, err)
	assert.Equal(t, "8A1-1735", id)

	assert.Contains(t, sent, `<?qbxml version="16.0"?>`)
	assert.Contains(t, sent, `onError="continueOnError"`)
	assert.Contains(t, sent, "<FullName>Float Financial</FullName>")
	assert.Contains(t, sent, "<FullName>GITHUB</FullName>")
	assert.Contains(t, sent, "<RefNumber>FLT-10231</RefNumber>")
	assert.Contains(t, sent, "<TxnDate>2025-01-03</TxnDate>")
	assert.Contains(t, sent, "<Amount>0.20</Amount>")
	assert.Contains(t, sent, "<Memo>Half of the GST</Memo>")
}

func TestCreateCheque_RefNumberTruncated(t *testing.T) {
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<CheckAddRs statusCode="0"><CheckRet><TxnID>8A1-1736</TxnID></CheckRet></CheckAddRs>`)
	})

	p := chequeParams()
	p.Reference = "float_20250103_GITHUB"
	_, err := c.CreateCheque(p)
	require.NoError(t, err)

	// QuickBooks caps RefNumber at 11 characters; the tail survives.
	assert.Contains(t, sent, "<RefNumber>0103_GITHUB</RefNumber>")
}

func TestCreateCheque_ApplicationError(t *testing.T) {
	c := gateway(t, func(string) string {
		return envelope(`<CheckAddRs statusCode="3140" statusSeverity="Error" statusMessage="Invalid reference to QuickBooks Account"/>`)
	})

	_, err := c.CreateCheque(chequeParams())
	var lerr *ledger.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 3140, lerr.Code)
	assert.Contains(t, lerr.Message, "Invalid reference")
	assert.NotErrorIs(t, err, ledger.ErrConnection)
}

func TestCreateDeposit(t *testing.T) {
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<DepositAddRs statusCode="0"><DepositRet><TxnID>8A2-2201</TxnID></DepositRet></DepositAddRs>`)
	})

	id, err := c.CreateDeposit(ledger.DepositParams{
		BankAccount: "Float Financial",
		Reference:   "FLT-10232",
		Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Memo:        "Interest earned on balance",
		Lines: []model.Line{
			{Account: "Other Income:Interest Income", Amount: decimal.RequireFromString("1.02")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "8A2-2201", id)
	assert.Contains(t, sent, "DepositAddRq")
	assert.Contains(t, sent, "<FullName>Other Income:Interest Income</FullName>")
}

func TestCreateBill(t *testing.T) {
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<BillAddRs statusCode="0"><BillRet><TxnID>8A3-3407</TxnID></BillRet></BillAddRs>`)
	})

	id, err := c.CreateBill(ledger.BillParams{
		PayablesAccount: "Accounts Payable",
		Vendor:          "A. Lee",
		Reference:       "float_20250114_ALEE",
		Date:            time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
		Memo:            "Client dinner",
		Lines: []model.Line{
			{Account: "Meals & Entertainment", Amount: decimal.RequireFromString("88.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "8A3-3407", id)
	assert.Contains(t, sent, "<FullName>A. Lee</FullName>")
	assert.Contains(t, sent, "<FullName>Accounts Payable</FullName>")
}

func TestFind_ByReference(t *testing.T) {
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<TransactionQueryRs statusCode="0"><TransactionRet>` +
			`<TxnID>8A1-1735</TxnID><TxnType>Check</TxnType><TxnDate>2025-01-03</TxnDate>` +
			`<RefNumber>FLT-10231</RefNumber><Amount>-4.20</Amount>` +
			`<EntityRef><FullName>GITHUB</FullName></EntityRef>` +
			`</TransactionRet></TransactionQueryRs>`)
	})

	entry, found, err := c.Find(ledger.Query{Reference: "FLT-10231"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "8A1-1735", entry.TxnID)
	assert.Equal(t, model.KindCheque, entry.Kind)
	assert.Equal(t, "GITHUB", entry.Counterparty)
	assert.Contains(t, sent, "<RefNumber>FLT-10231</RefNumber>")
}

func TestFind_NoMatch(t *testing.T) {
	c := gateway(t, func(string) string {
		// Status 1 is "no matching object", not an error.
		return envelope(`<TransactionQueryRs statusCode="1" statusSeverity="Warn" statusMessage="A query request did not find a matching object"/>`)
	})

	_, found, err := c.Find(ledger.Query{Reference: "FLT-99999"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFind_HeuristicComparesAmount(t *testing.T) {
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<TransactionQueryRs statusCode="0">` +
			`<TransactionRet><TxnID>8A1-1001</TxnID><TxnType>Check</TxnType><TxnDate>2025-01-03</TxnDate><Amount>-99.99</Amount></TransactionRet>` +
			`<TransactionRet><TxnID>8A1-1002</TxnID><TxnType>Check</TxnType><TxnDate>2025-01-03</TxnDate><Amount>-4.20</Amount></TransactionRet>` +
			`</TransactionQueryRs>`)
	})

	entry, found, err := c.Find(ledger.Query{
		Kind:         model.KindCheque,
		Date:         time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("4.20"),
		Counterparty: "GITHUB",
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "8A1-1002", entry.TxnID)

	assert.Contains(t, sent, "<FromTxnDate>2025-01-03</FromTxnDate>")
	assert.Contains(t, sent, "<ToTxnDate>2025-01-03</ToTxnDate>")
	assert.Contains(t, sent, "<FullName>GITHUB</FullName>")
}

func TestFind_DepositByKindDateAmount(t *testing.T) {
	// Deposits post without a RefNumber, so a re-imported deposit is found
	// through the date-range query with kind and amount compared here. The
	// same-day cheque of equal amount must not satisfy it.
	var sent string
	c := gateway(t, func(body string) string {
		sent = body
		return envelope(`<TransactionQueryRs statusCode="0">` +
			`<TransactionRet><TxnID>8A1-1001</TxnID><TxnType>Check</TxnType><TxnDate>2025-01-05</TxnDate><Amount>-1.02</Amount></TransactionRet>` +
			`<TransactionRet><TxnID>8A2-2201</TxnID><TxnType>Deposit</TxnType><TxnDate>2025-01-05</TxnDate><Amount>1.02</Amount></TransactionRet>` +
			`</TransactionQueryRs>`)
	})

	entry, found, err := c.Find(ledger.Query{
		Kind:   model.KindDeposit,
		Date:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("1.02"),
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "8A2-2201", entry.TxnID)
	assert.Equal(t, model.KindDeposit, entry.Kind)

	assert.Contains(t, sent, "<FromTxnDate>2025-01-05</FromTxnDate>")
	assert.NotContains(t, sent, "RefNumber")
	assert.NotContains(t, sent, "TransactionEntityFilter")
}

func TestAccounts(t *testing.T) {
	c := gateway(t, func(string) string {
		return envelope(`<AccountQueryRs statusCode="0">` +
			`<AccountRet><FullName>Float Financial</FullName></AccountRet>` +
			`<AccountRet><FullName>Other Income:Interest Income</FullName></AccountRet>` +
			`</AccountQueryRs>`)
	})

	accounts, err := c.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Float Financial", "Other Income:Interest Income"}, accounts)
}

func TestVendors(t *testing.T) {
	c := gateway(t, func(string) string {
		return envelope(`<VendorQueryRs statusCode="0">` +
			`<VendorRet><Name>GITHUB</Name></VendorRet>` +
			`<VendorRet><Name>A. Lee</Name></VendorRet>` +
			`</VendorQueryRs>`)
	})

	vendors, err := c.Vendors()
	require.NoError(t, err)
	assert.Equal(t, []string{"GITHUB", "A. Lee"}, vendors)
}

func TestRefNumber(t *testing.T) {
	assert.Equal(t, "FLT-10231", refNumber("FLT-10231"))
	assert.Equal(t, "0103_GITHUB", refNumber("float_20250103_GITHUB"))
	assert.Equal(t, "", refNumber(""))
}
