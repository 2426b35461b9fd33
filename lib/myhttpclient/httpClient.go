package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

type httpClient struct {
	client *http.Client
}

func New() HTTPSender {
	return NewWithTimeout(defaultTimeout)
}

func NewWithTimeout(timeout time.Duration) HTTPSender {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c httpClient) Send(ctx context.Context, method string, url string, headers map[string]string, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for %s %s: %s", method, url, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	log.Printf("HTTP request: %s %s", method, url)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error sending %s %s: %s", method, url, err)
	}

	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response %s %s: %s", method, url, err)
	}

	log.Printf("HTTP resp: %d", httpResp.StatusCode)

	return httpResp.StatusCode, respPayload, nil
}
