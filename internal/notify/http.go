package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultResendURL = "https://api.resend.com"
	DefaultTwilioURL = "https://api.twilio.com"
)

func defaultHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// ResendSink отправляет письма через Resend-совместимый POST /emails.
type ResendSink struct {
	client  *http.Client
	baseURL string
	apiKey  string
	from    string
}

func NewResendSink(baseURL, apiKey, from string, client *http.Client) *ResendSink {
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	return &ResendSink{
		client:  defaultHTTPClient(client),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
}

func (s *ResendSink) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(resendEmail{
		From:    s.from,
		To:      []string{m.To},
		Subject: m.Subject,
		Text:    m.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return do(s.client, req)
}

// TwilioSink отправляет SMS через Twilio-совместимый Messages.json.
type TwilioSink struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
}

func NewTwilioSink(baseURL, accountSID, authToken, from string, client *http.Client) *TwilioSink {
	if baseURL == "" {
		baseURL = DefaultTwilioURL
	}
	return &TwilioSink{
		client:     defaultHTTPClient(client),
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
	}
}

func (s *TwilioSink) Send(ctx context.Context, m Message) error {
	form := url.Values{}
	form.Set("To", m.To)
	form.Set("From", s.from)
	form.Set("Body", m.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return do(s.client, req)
}

func do(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s",
			ErrDelivery, req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
