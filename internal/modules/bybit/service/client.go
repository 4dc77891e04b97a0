package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"trade_relay/internal/modules/config"
)

const (
	mainnetURL = "https://api.bybit.com"
	demoURL    = "https://api-demo.bybit.com"

	recvWindow = "5000"
)

// Client — клиент приватного и публичного REST Bybit v5 (linear-перпетуалы).
// Без состояния: один синхронный запрос-ответ на операцию.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
}

func NewClient(cfg *config.Config) *Client {
	base := mainnetURL
	if cfg.Bybit.Demo {
		base = demoURL
	}
	return &Client{
		http:    &http.Client{},
		baseURL: base,

		apiKey:    cfg.Bybit.APIKey,
		apiSecret: cfg.Bybit.APISecret,
	}
}

// sign — подпись v5: HMAC-SHA256(secret, ts + apiKey + recvWindow + payload) в hex.
// payload — query string для GET и сырое тело для POST.
func (c *Client) sign(ts, payload string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(ts + c.apiKey + recvWindow + payload))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) setAuthHeaders(req *http.Request, ts, payload string) {
	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", ts)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("X-BAPI-SIGN", c.sign(ts, payload))
}

func (c *Client) getSigned(ctx context.Context, path, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	c.setAuthHeaders(req, ts, query)

	return c.do(req)
}

func (c *Client) postSigned(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	c.setAuthHeaders(req, ts, string(body))
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}
	return rb, nil
}
