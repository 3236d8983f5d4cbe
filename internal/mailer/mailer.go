// Package mailer notifies submitters through the Mailgun messages API.
// Sending is fire and forget, a delivery failure never reaches the caller.
package mailer

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/completecity/petryk/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the Mailgun API endpoint.
const DefaultBaseURL = "https://api.mailgun.net/v3"

// A Mailer sends transactional emails. It is a no-op when unconfigured.
type Mailer struct {
	// BaseURL of the Mailgun API, overridable for tests.
	BaseURL string

	client *http.Client
	apiKey string
	domain string
	from   string
	notify string
}

// New returns a new Mailer for the given Mailgun credentials.
// notify is an optional address receiving a copy of every notification.
func New(apiKey, domain, from, notify string) *Mailer {
	if from == "" && domain != "" {
		from = "Petryk <noreply@" + domain + ">"
	}

	return &Mailer{
		BaseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		domain:  domain,
		from:    from,
		notify:  notify,
	}
}

// Enabled returns true when an API key and a domain are configured.
func (m *Mailer) Enabled() bool {
	return m.apiKey != "" && m.domain != ""
}

// NotifyCreated emails the submitter that the given item has been remembered.
// It returns before the email is sent, failures are only logged.
func (m *Mailer) NotifyCreated(item *model.Item) {
	if !m.Enabled() || item.Email == "" {
		return
	}

	html, err := RenderCreated(item)
	if err != nil {
		logrus.WithError(err).Warn("could not render notification email")
		return
	}

	recipients := []string{item.Email}
	if m.notify != "" && m.notify != item.Email {
		recipients = append(recipients, m.notify)
	}

	id := item.ID
	if len(id) > 8 {
		id = id[:8]
	}
	subject := "Petryk remembers — " + id

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := m.Send(ctx, recipients, subject, html); err != nil {
			logrus.WithError(err).Warn("could not send notification email")
		}
	}()
}

// Send posts a single email to the Mailgun messages API.
func (m *Mailer) Send(ctx context.Context, to []string, subject, html string) error {
	if !m.Enabled() {
		return nil
	}

	form := url.Values{}
	form.Set("from", m.from)
	for _, recipient := range to {
		form.Add("to", recipient)
	}
	form.Set("subject", subject)
	form.Set("html", html)

	endpoint := strings.TrimRight(m.BaseURL, "/") + "/" + m.domain + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "could not build email request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not perform email request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return errors.Errorf("email response status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
