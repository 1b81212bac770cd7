package slack

import (
	"strings"
	"testing"
	"time"

	"github.com/taskdog/taskdog/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	taskID := int64(123)
	msg := client.formatMessage(notify.FailurePayload{
		Component:  "audit_trail",
		Operation:  "create_task",
		TaskID:     &taskID,
		Subject:    "Write report",
		Error:      "boom",
		ErrorClass: "test_error",
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#alerts" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !containsAll(
		text,
		[]string{"Taskdog failure alert", "audit_trail", "create_task", "123", "Write report", "boom", "test_error"},
	) {
		t.Fatalf("message text missing fields: %s", text)
	}
}

func TestFormatMessageTaskLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:    "https://hooks.slack.com/services/test",
		TaskURLPrefix: "https://taskdog.local/tasks",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	taskID := int64(42)
	msg := client.formatMessage(notify.FailurePayload{
		TaskID: &taskID,
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	expected := "<https://taskdog.local/tasks/42|42>"
	if !strings.Contains(text, expected) {
		t.Fatalf("expected task link %q in text: %s", expected, text)
	}
}

func TestFormatMessageEscapesSubject(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	taskID := int64(7)
	msg := client.formatMessage(notify.FailurePayload{
		TaskID:  &taskID,
		Subject: "test & <task>",
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	if !strings.Contains(text, "test &amp; &lt;task&gt;") {
		t.Fatalf("expected escaped subject, got: %s", text)
	}
}

func TestFormatTaskValuePermutations(t *testing.T) {
	id1 := int64(1)
	id2 := int64(2)
	id3 := int64(3)

	tcs := []struct {
		name    string
		taskID  *int64
		subject string
		prefix  string
		want    string
	}{
		{
			name:   "id with link",
			taskID: &id1,
			prefix: "https://app.example/tasks",
			want:   "<https://app.example/tasks/1|1>",
		},
		{
			name:    "subject only",
			subject: "Friendly",
			prefix:  "https://app.example/tasks",
			want:    "Friendly",
		},
		{
			name:    "id and subject with link",
			taskID:  &id2,
			subject: "Friendly",
			prefix:  "https://app.example/tasks",
			want:    "<https://app.example/tasks/2|Friendly> (2)",
		},
		{
			name:    "id and subject without link",
			taskID:  &id3,
			subject: "Friendly",
			prefix:  "not a url",
			want:    "Friendly (3)",
		},
		{
			name:    "empty inputs",
			subject: "",
			prefix:  "https://app.example/tasks",
			want:    "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(Config{
				WebhookURL:    "https://hooks.slack.com/services/test",
				TaskURLPrefix: tc.prefix,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := client.formatTaskValue(tc.taskID, tc.subject)
			if got != tc.want {
				t.Fatalf("formatTaskValue(%v,%q) = %q, want %q", tc.taskID, tc.subject, got, tc.want)
			}
		})
	}
}

func containsAll(text string, substrs []string) bool {
	for _, s := range substrs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}
