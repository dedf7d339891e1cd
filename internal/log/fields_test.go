package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithRequestID("req-1").
		WithChat(42, "alice").
		WithCommand("summary")

	slice := fields.ToSlice()
	if len(slice) != 8 {
		t.Fatalf("slice length = %d, want 8", len(slice))
	}

	got := make(map[string]any)
	for i := 0; i < len(slice); i += 2 {
		got[slice[i].(string)] = slice[i+1]
	}
	if got[FieldRequestID] != "req-1" {
		t.Errorf("request id = %v", got[FieldRequestID])
	}
	if got[FieldChatID] != int64(42) {
		t.Errorf("chat id = %v", got[FieldChatID])
	}
	if got[FieldUsername] != "alice" {
		t.Errorf("username = %v", got[FieldUsername])
	}
	if got[FieldCommand] != "summary" {
		t.Errorf("command = %v", got[FieldCommand])
	}
}

func TestForUpdateCarriesIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: "bot",
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	derived := ForUpdate(logger, "req-7", 99, "bob", "view")
	derived.Info("dispatching message")

	out := buf.String()
	for _, want := range []string{
		"request_id=req-7",
		"chat_id=99",
		"username=bob",
		"command=view",
		"component=bot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}
