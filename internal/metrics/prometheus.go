package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// FormatPrometheus formats metrics in Prometheus text format.
// See: https://prometheus.io/docs/instrumenting/exposition_formats/
func FormatPrometheus(snap Snapshot) string {
	var sb strings.Builder

	writeHeader(&sb, "moviegraph_uptime_seconds", "gauge", "Time since the server started")
	fmt.Fprintf(&sb, "moviegraph_uptime_seconds %d\n\n", snap.Uptime)

	writeRouteCounter(&sb, "moviegraph_requests_total", "counter", "Total number of requests by route", snap.TotalRequests, false)
	writeRouteCounter(&sb, "moviegraph_request_errors_total", "counter", "Requests answered with a 5xx status by route", snap.RequestErrors, false)
	// Only active routes are shown.
	writeRouteCounter(&sb, "moviegraph_requests_in_progress", "gauge", "Current number of requests being processed", snap.RequestsInProgress, true)
	writeRouteCounter(&sb, "moviegraph_request_duration_ms_total", "counter", "Total request duration in milliseconds", snap.TotalRequestsDur, false)

	return sb.String()
}

func writeHeader(sb *strings.Builder, name, kind, help string) {
	fmt.Fprintf(sb, "# HELP %s %s\n", name, help)
	fmt.Fprintf(sb, "# TYPE %s %s\n", name, kind)
}

func writeRouteCounter(sb *strings.Builder, name, kind, help string, values map[string]int64, positiveOnly bool) {
	writeHeader(sb, name, kind, help)
	for _, route := range sortedKeys(values) {
		v := values[route]
		if positiveOnly && v <= 0 {
			continue
		}
		fmt.Fprintf(sb, "%s{route=%q} %d\n", name, route, v)
	}
	sb.WriteString("\n")
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
