// Package notify provides the fire-and-forget notification dispatcher port.
// The core calls it after each durable transition; failures are logged and
// never block or roll back the transition.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gigbridge/gigbridge/internal/logger"
)

// Kind identifies the notification template to render downstream
type Kind string

// Notification kinds
const (
	KindBidSubmitted     Kind = "bid_submitted"
	KindBidReceived      Kind = "bid_received"
	KindBidAccepted      Kind = "bid_accepted"
	KindBidRejected      Kind = "bid_rejected"
	KindChangeRequested  Kind = "change_requested"
	KindChangeResponded  Kind = "change_responded"
	KindWorkerCompleted  Kind = "worker_completed"
	KindJobCompleted     Kind = "job_completed"
	KindDisputeFiled     Kind = "dispute_filed"
	KindJobReopened      Kind = "job_reopened"
	KindReopenInvitation Kind = "reopen_invitation"
	KindJobCancelled     Kind = "job_cancelled"
	KindWorkerSuspended  Kind = "worker_suspended"
	KindWorkerBanned     Kind = "worker_banned"
	KindAdminEscalation  Kind = "admin_escalation"
	KindPaymentReleased  Kind = "payment_released"
	KindJobWaitlisted    Kind = "job_waitlisted"
)

// Customer returns the routing address for a customer. Resolving it to an
// email is the notification collaborator's concern.
func Customer(id uint) string {
	return fmt.Sprintf("customer/%d", id)
}

// Admin is the routing address for administrator escalations
const Admin = "admin"

// Dispatcher delivers notifications to recipients
type Dispatcher interface {
	Notify(ctx context.Context, recipient string, kind Kind, payload map[string]interface{})
}

// WebhookDispatcher posts notifications as JSON to a downstream delivery
// service. Failures are logged, never returned.
type WebhookDispatcher struct {
	URL    string
	client *http.Client
}

// NewWebhookDispatcher creates a dispatcher posting to the given URL
func NewWebhookDispatcher(url string) *WebhookDispatcher {
	return &WebhookDispatcher{
		URL:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify implements Dispatcher
func (d *WebhookDispatcher) Notify(ctx context.Context, recipient string, kind Kind, payload map[string]interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"recipient": recipient,
		"kind":      kind,
		"payload":   payload,
	})
	if err != nil {
		logger.Errorf("Failed to marshal notification %s: %v", kind, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewBuffer(body))
	if err != nil {
		logger.Errorf("Failed to build notification request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		logger.WarnWithFields("Notification delivery failed", map[string]interface{}{
			"recipient": recipient,
			"kind":      kind,
			"error":     err.Error(),
		})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		logger.WarnWithFields("Notification delivery rejected", map[string]interface{}{
			"recipient": recipient,
			"kind":      kind,
			"status":    resp.StatusCode,
		})
	}
}

// LogDispatcher logs notifications instead of delivering them. Used when no
// delivery endpoint is configured.
type LogDispatcher struct{}

// Notify implements Dispatcher
func (d *LogDispatcher) Notify(_ context.Context, recipient string, kind Kind, payload map[string]interface{}) {
	logger.InfoWithFields("Notification", map[string]interface{}{
		"recipient": recipient,
		"kind":      kind,
		"payload":   payload,
	})
}
