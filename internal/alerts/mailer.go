package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Mailer sends transactional email through the Plunk HTTP API.
type Mailer struct {
	apiKey string
	from   string
	apiURL string
	httpc  *http.Client
}

func NewMailer(apiKey, from, apiURL string) *Mailer {
	if apiURL == "" {
		apiURL = "https://api.useplunk.com/v1/send"
	}
	return &Mailer{
		apiKey: apiKey,
		from:   from,
		apiURL: apiURL,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

type plunkSendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
}

func (m *Mailer) Send(env EmailEnvelope) error {
	if m.apiKey == "" {
		return fmt.Errorf("mailer not configured: set PLUNK_API_KEY")
	}

	b, err := json.Marshal(plunkSendBody{To: env.To, Subject: env.Subject, Body: env.Body, From: m.from})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, m.apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("plunk send failed: %s: %s", resp.Status, string(body))
	}
	return nil
}
