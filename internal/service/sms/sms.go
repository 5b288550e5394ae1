package smsclient

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	xerrors "auth-service/pkg/utils/errors"

	"github.com/go-resty/resty/v2"
)

const sendURL = "https://sms.ru/sms/send"

// Client talks to the SMS.ru gateway. Failures are reported to the caller
// and never retried here; retry policy belongs to the boundary.
type Client struct {
	http   *resty.Client
	apiKey string
}

func NewSMSClient(apiKey string) *Client {
	return &Client{
		http:   resty.New().SetTimeout(10 * time.Second),
		apiKey: apiKey,
	}
}

type sendResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
}

func (c *Client) Send(ctx context.Context, phone, message string) error {
	if c.apiKey == "" {
		log.Printf("SMS.ru API key not configured, skipping SMS | To=%s", phone)
		return xerrors.ErrSMSDelivery
	}

	var body sendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_id": c.apiKey,
			"to":     strings.TrimPrefix(phone, "+"),
			"msg":    message,
			"json":   "1",
		}).
		SetResult(&body).
		Get(sendURL)
	if err != nil {
		log.Printf("SMS send error | To=%s | Err=%v", phone, err)
		return fmt.Errorf("%w: %v", xerrors.ErrSMSDelivery, err)
	}
	if resp.StatusCode() != 200 || (body.Status != "OK" && body.StatusCode != 100) {
		log.Printf("SMS send failed | To=%s | HTTP=%d | Status=%s", phone, resp.StatusCode(), body.Status)
		return xerrors.ErrSMSDelivery
	}

	log.Printf("SMS sent | To=%s", phone)
	return nil
}
