package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"secretchannel/internal/domain"
)

const (
	pathExchangeIdentity = "/exchange/identity-dh-params"
	pathExchangeDH       = "/exchange/dh"
	pathChallenge        = "/challenge"
)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Method string
	URL    string
	Status string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, e.Detail)
}

// HTTP talks to the service at Base.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for base, e.g. http://127.0.0.1:8000.
func NewHTTP(base string) *HTTP {
	return &HTTP{Base: strings.TrimRight(base, "/"), HTTP: http.DefaultClient}
}

func (c *HTTP) ExchangeIdentity(
	ctx context.Context,
	req domain.IdentityRequest,
) (domain.IdentityResponse, error) {
	var out domain.IdentityResponse
	if err := c.do(ctx, http.MethodPost, pathExchangeIdentity, req, &out); err != nil {
		return domain.IdentityResponse{}, err
	}
	return out, nil
}

func (c *HTTP) ExchangeSignedKey(ctx context.Context, req domain.SignedKey) (domain.SignedKey, error) {
	var out domain.SignedKey
	if err := c.do(ctx, http.MethodPost, pathExchangeDH, req, &out); err != nil {
		return domain.SignedKey{}, err
	}
	return out, nil
}

func (c *HTTP) FetchChallenge(ctx context.Context) (domain.Challenge, error) {
	var out domain.Challenge
	if err := c.do(ctx, http.MethodGet, pathChallenge, nil, &out); err != nil {
		return domain.Challenge{}, err
	}
	return out, nil
}

func (c *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = buf
	}

	u := c.Base + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, u)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, u)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e domain.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &StatusError{
			Method: method,
			URL:    u,
			Status: resp.Status,
			Code:   resp.StatusCode,
			Detail: e.Detail,
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

var _ domain.ChannelClient = (*HTTP)(nil)
