package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainsms "immunization_reminder_bot/internal/domain/sms"

	"github.com/sirupsen/logrus"
)

// GatewayClient sends SMS through a Twilio-compatible REST gateway.
// With no account SID configured it runs in simulation mode: outbound
// messages are logged and reported as sent, which keeps rural pilots
// working before gateway credentials exist.
type GatewayClient struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

func NewGatewayClient(accountSID, authToken, fromNumber, baseURL string, log *logrus.Entry) *GatewayClient {
	return &GatewayClient{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    strings.TrimRight(baseURL, "/"),
		// Per-call deadlines come from the caller's context; this is a
		// hard ceiling against a gateway that never answers.
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Simulated reports whether the client is running without credentials.
func (c *GatewayClient) Simulated() bool {
	return c.accountSID == ""
}

// Send delivers one message. The destination number is normalized to
// +62 E.164 form before the call.
func (c *GatewayClient) Send(ctx context.Context, to, body string) error {
	to = domainsms.NormalizePhone(to)

	if c.Simulated() {
		c.log.WithFields(logrus.Fields{
			"to":      to,
			"preview": preview(body),
		}).Info("Simulation mode: SMS not actually sent")
		return nil
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling SMS gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("SMS gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	c.log.WithField("to", to).Debug("SMS accepted by gateway")
	return nil
}

func preview(body string) string {
	const max = 50
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}
