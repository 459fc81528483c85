package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Options holds the CAPTCHA verifier settings.
type Options struct {
	Enable    bool   `yaml:"enable"`
	Secret    string `yaml:"secret"`
	VerifyURL string `yaml:"verify_url"`
}

// Verifier checks human-verification tokens against a Turnstile-compatible
// siteverify endpoint. Signup and resend-verification flows are gated on it.
type Verifier struct {
	opts   Options
	client *http.Client
}

func New(opts Options) *Verifier {
	return &Verifier{
		opts:   opts,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

var ErrVerificationFailed = errors.New("captcha verification failed")

// Verify validates a client token. A disabled verifier accepts everything.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.opts.Enable {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return ErrVerificationFailed
	}

	endpoint := strings.TrimSpace(v.opts.VerifyURL)
	if endpoint == "" {
		endpoint = defaultVerifyURL
	}

	form := url.Values{}
	form.Set("secret", v.opts.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("captcha verify request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("captcha verify response: %w", err)
	}
	if !result.Success {
		return ErrVerificationFailed
	}
	return nil
}
