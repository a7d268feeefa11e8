package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Client is a thin resty wrapper shared by the market-data and execution
// clients. Proxy configuration is picked up from the environment by resty
// (HTTP_PROXY / HTTPS_PROXY).
type Client struct {
	client *resty.Client
	signer *Signer
}

// NewClient creates a REST client for the given host.
func NewClient(host string) *Client {
	host = strings.TrimSuffix(host, "/")

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// Honor Retry-After on 429 rate limits.
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &Client{client: client}
}

// SetSigner attaches request signing for authenticated endpoints.
func (c *Client) SetSigner(s *Signer) {
	c.signer = s
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "mmbot/1.0")
	return r
}

// Get performs an unauthenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	r := c.newRequest(ctx)
	if params != nil {
		r.SetQueryParams(params)
	}
	if out != nil {
		r.SetResult(out)
	}
	resp, err := r.Get(endpoint)
	return checkResponse(resp, err)
}

// PostSigned performs a signed POST with a JSON body.
func (c *Client) PostSigned(ctx context.Context, endpoint string, body any, out any) error {
	if c.signer == nil {
		return errors.New("no signer configured")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}

	r := c.newRequest(ctx)
	r.SetHeader("Content-Type", "application/json")
	r.SetBody(raw)
	if out != nil {
		r.SetResult(out)
	}

	headers, err := c.signer.SignRequest(http.MethodPost, endpoint, raw)
	if err != nil {
		return errors.Wrap(err, "sign request")
	}
	r.SetHeaders(headers)

	resp, err := r.Post(endpoint)
	return checkResponse(resp, err)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	var body any
	b := resp.Body()
	_ = json.Unmarshal(b, &body)
	if body == nil {
		body = string(b)
	}
	return errors.Errorf("http %d: %s", resp.StatusCode(), fmt.Sprint(body))
}
