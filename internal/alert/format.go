package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event Event) ([]byte, error) {
	subject := event.Address
	if subject == "" {
		subject = event.AgentID
	}

	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("ledgerguard: %s", event.Decision),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Subject:* %s", subject)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Kind:* %s", event.Kind)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Score:* %d (%s)", event.RiskScore, event.Severity)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", event.Reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("ledgerguard %s: %s", event.Decision, summarySubject(event)),
			"severity": pagerSeverity(event.Severity),
			"source":   "ledgerguard",
			"custom_details": map[string]any{
				"kind":       event.Kind,
				"address":    event.Address,
				"chain":      event.Chain,
				"agent_id":   event.AgentID,
				"risk_score": event.RiskScore,
				"reason":     event.Reason,
				"request_id": event.RequestID,
			},
		},
	}
	return json.Marshal(payload)
}

func summarySubject(event Event) string {
	if event.Address != "" {
		return event.Address
	}
	if event.AgentID != "" {
		return "agent " + event.AgentID
	}
	return event.Kind
}

// pagerSeverity maps signal severities onto PagerDuty's fixed set.
func pagerSeverity(severity string) string {
	switch severity {
	case "blocklist", "severe":
		return "critical"
	case "high":
		return "error"
	case "medium":
		return "warning"
	default:
		return "info"
	}
}
