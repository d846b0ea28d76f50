package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/dukerupert/washdesk/internal/model"
)

const postmarkURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient returns a Postmark client. baseURL is the admin site root used to
// build links back to the notification center.
func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
	Tag      string `json:"Tag,omitempty"`
}

// SendIssueReport escalates an ISSUE_REPORT notification to the support inbox.
func (c *Client) SendIssueReport(ctx context.Context, toEmail string, n model.Notification) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	subject := "Issue reported: " + n.Title
	if n.BookingID != "" {
		subject += " (" + n.BookingID + ")"
	}

	link := c.baseURL + "/admin/notifications?type=" + model.TypeIssueReport
	textBody := fmt.Sprintf("%s\n\n%s\n\nBooking: %s\nReported: %s\n\nOpen the notification center: %s",
		n.Title, n.Message, orNA(n.BookingID), n.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"), link)
	htmlBody := fmt.Sprintf(
		`<h2>%s</h2><p>%s</p><p>Booking: %s<br>Reported: %s</p><p><a href="%s">Open the notification center</a></p>`,
		html.EscapeString(n.Title), html.EscapeString(n.Message), html.EscapeString(orNA(n.BookingID)),
		n.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"), link,
	)

	return c.send(ctx, postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
		Tag:      "issue-report",
	})
}

func (c *Client) send(ctx context.Context, payload postmarkEmail) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", postmarkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
