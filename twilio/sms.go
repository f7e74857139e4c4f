package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Sender interface {
	Send(ctx context.Context, to, message string) (string, error)
}

type smsSender struct {
	AccountSID string
	AuthToken  string
	URL        string
	From       string
	HTTPClient *http.Client
}

func NewSender(acSID, authToken, url, from string) Sender {
	return &smsSender{
		AccountSID: acSID,
		AuthToken:  authToken,
		URL:        fmt.Sprintf("%s/%s/Messages.json", strings.TrimRight(url, "/"), acSID),
		From:       from,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers message to the given number and returns the message sid.
func (s *smsSender) Send(ctx context.Context, to, message string) (string, error) {
	v := url.Values{}
	v.Set("To", to)
	v.Set("From", s.From)
	v.Set("Body", message)

	statusCode, sid, err := s.post(ctx, v)
	if err != nil {
		return "", fmt.Errorf("send: error sending sms: status code: %d: err: %w", statusCode, err)
	}
	return sid, nil
}

func (s *smsSender) post(ctx context.Context, values url.Values) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, strings.NewReader(values.Encode()))
	if err != nil {
		return 0, "", err
	}

	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.HTTPClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()

	bodyBytes, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, "", fmt.Errorf("post: error reading sms body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res.StatusCode, "", fmt.Errorf("post: error making post request: %s", strings.TrimSpace(string(bodyBytes)))
	}

	var data struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(bodyBytes, &data); err != nil {
		return res.StatusCode, "", fmt.Errorf("post: error unmarshalling response body: %w", err)
	}
	return res.StatusCode, data.Sid, nil
}
