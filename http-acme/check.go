package http_acme

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
)

// Check presents a random proof for domain then requests it over plain http
// on port to confirm challenges for domain reach this challenge directory
func (c *ChallDirProvider) Check(ctx context.Context, client *http.Client, domain string, port int) error {
	token := uuid.NewString()
	proof := token + "." + uuid.NewString()

	err := c.Present(domain, token, proof)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.CleanUp(domain, token, proof)
	}()

	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(domain, strconv.Itoa(port)),
		Path:   ChallengePath(token),
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid status code, expected 200 got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(len(proof))+1))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if string(body) != proof {
		return fmt.Errorf("challenge proof does not match")
	}
	return nil
}
