package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/domain/model"
)

func TestRenderAuditStatsIncludesSuccessRate(t *testing.T) {
	var buf bytes.Buffer

	stats := &model.AuditStats{Total: 10, Succeeded: 8, Failed: 2}
	err := renderAuditStats(&buf, auditStatsOptions{}, stats, 3*time.Millisecond)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Audit Trail Summary (all operations)")
	require.Contains(t, out, "Success rate")
	require.Contains(t, out, "80.0%")
	require.Contains(t, out, "Query time: 3ms")
}

func TestRenderAuditStatsScopesByOperation(t *testing.T) {
	var buf bytes.Buffer

	stats := &model.AuditStats{Total: 0}
	opts := auditStatsOptions{Operation: "create_task"}
	err := renderAuditStats(&buf, opts, stats, time.Millisecond)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `operation "create_task"`)
	require.NotContains(t, out, "Success rate")
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := []struct {
		host   string
		remote bool
	}{
		{"localhost", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"db.local", false},
		{"", false},
		{"10.0.0.5", true},
		{"db.prod.example.com", true},
	}
	for _, tc := range tests {
		require.Equal(t, tc.remote, isLikelyRemoteHost(tc.host), "host %q", tc.host)
	}
}

func TestQuoteIdentifierEscapesQuotes(t *testing.T) {
	require.Equal(t, `"taskdog"`, quoteIdentifier("taskdog"))
	require.Equal(t, `"odd""user"`, quoteIdentifier(`odd"user`))
}
