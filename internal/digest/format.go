package digest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatTimeline renders an InspectResult as a human-readable text timeline.
func FormatTimeline(result InspectResult) string {
	if len(result.Links) == 0 {
		return "No chain entries found.\n"
	}

	var b strings.Builder

	first := formatDateTime(result.Summary.FirstTimestamp)
	last := formatTimeOnly(result.Summary.LastTimestamp)
	b.WriteString(fmt.Sprintf("Entries: %d | %s–%s UTC\n", result.Summary.Total, first, last))
	b.WriteString(separator + "\n")

	for _, link := range result.Links {
		e := link.Entry
		b.WriteString(fmt.Sprintf("%-5d %-10s %-14s %-18s %-34s %s\n",
			link.Index,
			formatTimeOnly(e.Timestamp),
			truncate(e.Actor, 14),
			truncate(e.Kind, 18),
			truncate(e.Description, 34),
			shortDigest(link.Digest)))
	}

	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))

	return b.String()
}

// FormatJSON renders an InspectResult as indented JSON.
func FormatJSON(result InspectResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal inspect result: %w", err)
	}
	return string(data), nil
}

func formatDateTime(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s Summary) string {
	kinds := make([]string, 0, len(s.ByKind))
	for kind := range s.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", s.ByKind[kind], kind))
	}
	return fmt.Sprintf("Summary: %s | %d actor(s)\n", strings.Join(parts, ", "), len(s.ByActor))
}

func shortDigest(digest string) string {
	const prefix = "sha256:"
	hex := strings.TrimPrefix(digest, prefix)
	if len(hex) <= 12 {
		return digest
	}
	return prefix + hex[:12]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
