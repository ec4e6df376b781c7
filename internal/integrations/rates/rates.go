package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Client fetches the central bank reference rate from an XML feed. The rate
// is informational: issued credits and accounts always carry their own
// snapshot, so a feed outage never blocks operations.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a reference rate client
func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// FetchReferenceRate retrieves the current reference rate, in percent.
func (c *Client) FetchReferenceRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("reference rate XML response: %s", string(body))

	rate, err := parseRate(body)
	if err != nil {
		return 0, err
	}
	c.log.Infof("retrieved reference rate: %.2f%%", rate)
	return rate, nil
}

// parseRate extracts the most recent rate entry from the feed.
func parseRate(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	entries := doc.FindElements("//Rates/Rate")
	if len(entries) == 0 {
		return 0, fmt.Errorf("no rate data found in XML")
	}

	valueElement := entries[0].FindElement("./Value")
	if valueElement == nil {
		return 0, fmt.Errorf("value element not found in XML")
	}

	var rate float64
	if _, err := fmt.Sscanf(valueElement.Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %w", err)
	}
	return rate, nil
}
