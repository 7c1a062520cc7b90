package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleMessage_AppendsLogLine(t *testing.T) {
	chdir(t, t.TempDir())

	ev := MemberRegisteredEvent{
		UserID:       12,
		FirstName:    "Mia",
		LastName:     "Stone",
		Email:        "mia@example.com",
		Role:         "member",
		Status:       "pending",
		RegisteredAt: "2025-06-01T09:00:00Z",
	}
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := handleMessage(body); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if err := handleMessage(body); err != nil {
		t.Fatalf("handleMessage second call: %v", err)
	}

	data, err := os.ReadFile(filepath.Join("logs", "members.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	for _, want := range []string{"user_id=12", `name="Mia Stone"`, "email=mia@example.com", "role=member", "status=pending"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("log line missing %q: %s", want, lines[0])
		}
	}
}

func TestHandleMessage_BadPayload(t *testing.T) {
	chdir(t, t.TempDir())

	if err := handleMessage([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := os.Stat(filepath.Join("logs", "members.log")); !os.IsNotExist(err) {
		t.Fatal("malformed payload must not be logged")
	}
}
