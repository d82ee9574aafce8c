// Package notify is the client for the platform's mailer service. The engine
// treats email delivery as an external collaborator behind a simple
// request/response contract; SMTP handling lives entirely on the other side.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/pkg/models"
)

// Sentinel errors for mailer client failures.
var (
	ErrMailerUnreachable = errors.New("mailer unreachable")
	ErrMailerRejected    = errors.New("mailer rejected notification")
	ErrMailerTimeout     = errors.New("mailer request timeout")
)

// Notifier is the interface for sending plan-created notifications.
type Notifier interface {
	PlanCreated(ctx context.Context, n PlanNotification) error
	Ready(ctx context.Context) error
}

// PlanNotification carries the data the mailer needs to render and send the
// "action plan created" template to the company's safety officers.
type PlanNotification struct {
	CompanyID  uuid.UUID           `json:"company_id"`
	PlanID     uuid.UUID           `json:"plan_id"`
	SectorName string              `json:"sector_name"`
	RiskLevel  models.RiskLevel    `json:"risk_level"`
	Priority   models.PlanPriority `json:"priority"`
	DueDate    time.Time           `json:"due_date"`
	Template   string              `json:"template"`
}

// HTTPClient implements Notifier against the mailer's HTTP API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a new mailer HTTP client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) PlanCreated(ctx context.Context, n PlanNotification) error {
	if n.Template == "" {
		n.Template = "action-plan-created"
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	u := fmt.Sprintf("%s/api/v1/notifications", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: status %d", ErrMailerRejected, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Ready(ctx context.Context) error {
	u := fmt.Sprintf("%s/ready", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: mailer not ready (status %d)", ErrMailerUnreachable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrMailerTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrMailerTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrMailerUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrMailerUnreachable, err)
}

// NopNotifier is used when no mailer is configured; notifications are a
// best-effort side channel, never required for a run to succeed.
type NopNotifier struct{}

func (NopNotifier) PlanCreated(context.Context, PlanNotification) error { return nil }
func (NopNotifier) Ready(context.Context) error                         { return nil }

// Compile-time checks.
var (
	_ Notifier = (*HTTPClient)(nil)
	_ Notifier = NopNotifier{}
)
