// Package qbxml talks to QuickBooks Desktop through a qbXML gateway: an
// HTTP bridge bound to the running application that accepts qbXML request
// sets and returns the application's responses. The gateway owns the
// QuickBooks session; this client owns the request/response envelopes.
package qbxml

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/float2qb-dev/float2qb/internal/config"
	"github.com/float2qb-dev/float2qb/internal/ledger"
)

const qbxmlVersion = "16.0"

// Client is a Ledger backed by a qbXML gateway.
type Client struct {
	url     string
	appName string
	client  *http.Client
	log     *logrus.Logger
}

// Dial creates a Client and verifies the gateway can reach QuickBooks by
// issuing a HostQuery. A failure here is a connection error, fatal to the
// run before any rows are processed.
func Dial(cfg config.GatewayConfig, log *logrus.Logger) (*Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		url:     cfg.URL,
		appName: cfg.AppName,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}

	doc, rq := newRequestSet()
	rq.CreateElement("HostQueryRq")
	if _, err := c.send(doc); err != nil {
		return nil, err
	}
	log.WithField("gateway", cfg.URL).Debug("connected to qbXML gateway")
	return c, nil
}

// Close releases nothing client-side: the gateway scopes the QuickBooks
// session to each request set.
func (c *Client) Close() error { return nil }

// send posts a qbXML document and returns the parsed response body.
func (c *Client) send(doc *etree.Document) (*etree.Document, error) {
	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing qbXML: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("X-Application-Name", c.appName)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned status %d", ledger.ErrConnection, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ledger.ErrConnection, err)
	}
	c.log.Debugf("qbXML response: %s", raw)

	out := etree.NewDocument()
	if err := out.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parsing qbXML response: %w", err)
	}
	return out, nil
}

// roundTrip sends a single-request message set and returns its response
// element after checking the status attributes.
func (c *Client) roundTrip(op, rsName string, doc *etree.Document) (*etree.Element, error) {
	resp, err := c.send(doc)
	if err != nil {
		return nil, err
	}
	return responseElement(resp, op, rsName)
}
