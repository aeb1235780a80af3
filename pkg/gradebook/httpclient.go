package gradebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// HTTPClient talks to a gradebook service that exposes a columns
// collection: GET/POST {columnsURL}, POST {columnURL}/scores. Requests are
// authorized with OAuth2 client credentials.
type HTTPClient struct {
	http       *http.Client
	columnsURL string
}

type HTTPConfig struct {
	ColumnsURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	h := cc.Client(context.Background())
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &HTTPClient{http: h, columnsURL: cfg.ColumnsURL}
}

type columnJSON struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	ScoreMax   float64 `json:"scoreMaximum"`
	ResourceID string  `json:"resourceId"`
}

func (c *HTTPClient) ListColumns(ctx context.Context, q map[string]string) ([]Column, error) {
	u, err := url.Parse(c.columnsURL)
	if err != nil {
		return nil, err
	}
	p := u.Query()
	for k, v := range q {
		p.Set(k, v)
	}
	u.RawQuery = p.Encode()
	req, _ := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("list columns: %s", res.Status)
	}
	var items []columnJSON
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		return nil, err
	}
	out := make([]Column, 0, len(items))
	for _, it := range items {
		out = append(out, Column{ID: it.ID, Label: it.Label, ScoreMax: it.ScoreMax, ResourceID: it.ResourceID})
	}
	return out, nil
}

func (c *HTTPClient) CreateColumn(ctx context.Context, req CreateColumnReq) (Column, error) {
	body, _ := json.Marshal(map[string]any{
		"label": req.Label, "scoreMaximum": req.ScoreMax, "resourceId": req.ResourceID,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, "POST", c.columnsURL, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(httpReq)
	if err != nil {
		return Column{}, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return Column{}, fmt.Errorf("create column: %s", res.Status)
	}
	var it columnJSON
	if err := json.NewDecoder(res.Body).Decode(&it); err != nil {
		return Column{}, err
	}
	return Column{ID: it.ID, Label: it.Label, ScoreMax: it.ScoreMax, ResourceID: it.ResourceID}, nil
}

func (c *HTTPClient) PostScore(ctx context.Context, columnID string, s Score) error {
	body, _ := json.Marshal(map[string]any{
		"userId":       s.UserID,
		"scoreGiven":   s.ScoreGiven,
		"scoreMaximum": s.ScoreMaximum,
		"timestamp":    s.Timestamp.Format(time.RFC3339),
	})
	target := strings.TrimSuffix(columnID, "/") + "/scores"
	httpReq, _ := http.NewRequestWithContext(ctx, "POST", target, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("post score: %s", res.Status)
	}
	return nil
}
