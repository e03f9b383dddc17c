package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const (
	// DefaultExpoURL is the Expo push API.
	DefaultExpoURL = "https://exp.host"
	// ExpoMaxBatchSize is the most messages Expo accepts in one request.
	ExpoMaxBatchSize = 100

	sendPath = "/--/api/v2/push/send"
)

// ExpoConfig configures ExpoGateway.
type ExpoConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	// RetryAttempts is the number of retries after the first request.
	RetryAttempts uint
	RetryDelay    time.Duration
	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64
}

// ExpoGateway implements Gateway with the Expo push service.
type ExpoGateway struct {
	httpClient    *resty.Client
	limiter       *rate.Limiter
	retryAttempts uint
	retryDelay    time.Duration
}

type expoSendResponse struct {
	Data   []Ticket    `json:"data"`
	Errors []expoError `json:"errors"`
}

type expoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type responseError struct {
	statusCode int
	body       string
}

func (e *responseError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.statusCode, e.body)
}

// NewExpoGateway creates an ExpoGateway.
func NewExpoGateway(cfg ExpoConfig) *ExpoGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultExpoURL
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("Content-Type", "application/json")
	if cfg.AccessToken != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.AccessToken)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &ExpoGateway{
		httpClient:    client,
		limiter:       limiter,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
}

// Close releases the HTTP client.
func (g *ExpoGateway) Close() error {
	return g.httpClient.Close()
}

// Send posts one batch of at most ExpoMaxBatchSize messages.
// Server errors, rate limiting and network failures are retried.
func (g *ExpoGateway) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	if len(messages) > ExpoMaxBatchSize {
		return nil, fmt.Errorf("batch of %d messages exceeds the limit of %d", len(messages), ExpoMaxBatchSize)
	}

	var tickets []Ticket
	if err := retry.Do(
		func() error {
			result, err := g.send(ctx, messages)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Debug("retrying push request", "error", err)
				return err
			}
			tickets = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.retryAttempts+1),
		retry.Delay(g.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (g *ExpoGateway) send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("limiter.Wait() > %w", err)
	}

	response, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(messages).
		SetResult(&expoSendResponse{}).
		Post(sendPath)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, &responseError{statusCode: response.StatusCode(), body: response.String()}
	}

	body, ok := response.Result().(*expoSendResponse)
	if !ok || body == nil {
		return nil, fmt.Errorf("empty push response: %s", response.String())
	}
	if len(body.Errors) > 0 {
		return nil, fmt.Errorf("push request rejected: %s: %s", body.Errors[0].Code, body.Errors[0].Message)
	}
	if len(body.Data) != len(messages) {
		return nil, fmt.Errorf("got %d tickets for %d messages", len(body.Data), len(messages))
	}
	return body.Data, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var respErr *responseError
	if errors.As(err, &respErr) {
		return respErr.statusCode >= http.StatusInternalServerError || respErr.statusCode == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
