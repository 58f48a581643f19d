package pushover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.pushover.net/1/messages.json"

// Client delivers fired reminders as Pushover messages.
type Client struct {
	Token  string
	User   string
	APIURL string
	HTTP   *http.Client
}

func NewClient(token, user string) *Client {
	return &Client{
		Token:  token,
		User:   user,
		APIURL: DefaultAPIURL,
		HTTP:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SendMessage(ctx context.Context, title, message string) error {
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	params := url.Values{}
	params.Set("token", c.Token)
	params.Set("user", c.User)
	params.Set("title", title)
	params.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(body))
	}

	return nil
}
