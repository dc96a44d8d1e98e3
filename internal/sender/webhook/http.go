// Package webhook содержит провайдеры, которые отправляют уведомления HTTP запросом.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// poster общий HTTP клиент для всех провайдеров пакета.
type poster struct {
	client *http.Client
}

func newPoster(timeout time.Duration) poster {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return poster{client: &http.Client{Timeout: timeout}}
}

// postJSON отправляет data в формате JSON.
func (p poster) postJSON(ctx context.Context, url string, data interface{}, headers map[string]string) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return p.do(req)
}

// postForm отправляет data полем "data" в multipart/form-data.
func (p poster) postForm(ctx context.Context, url string, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("data", string(b)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return p.do(req)
}

func (p poster) do(req *http.Request) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if text := strings.TrimSpace(string(msg)); text != "" {
			return fmt.Errorf("api returned status %d: %s", resp.StatusCode, text)
		}
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return nil
}
