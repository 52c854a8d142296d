package events

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	handler := LogHandler(LogConfig{Writer: &buf})

	handler(NewEvent(NodeFinished, "frontend").WithNode("app-shell"))

	output := buf.String()
	if !strings.Contains(output, "[node.finished]") {
		t.Errorf("expected output to contain [node.finished], got: %s", output)
	}
	if !strings.Contains(output, "frontend") {
		t.Errorf("expected output to contain frontend, got: %s", output)
	}
	if !strings.Contains(output, "node=app-shell") {
		t.Errorf("expected output to contain node=app-shell, got: %s", output)
	}
}

func TestLogHandler_DefaultWriter(t *testing.T) {
	handler := LogHandler(LogConfig{})
	handler(NewEvent(PoolStarted, ""))
}

func TestLogHandler_IncludePayload(t *testing.T) {
	var buf bytes.Buffer
	handler := LogHandler(LogConfig{
		Writer:         &buf,
		IncludePayload: true,
	})

	handler(NewEvent(NodeStarted, "frontend").WithPayload(map[string]string{"key": "value"}))

	output := buf.String()
	if !strings.Contains(output, "payload=") {
		t.Errorf("expected output to contain payload=, got: %s", output)
	}
}

func TestLogHandler_PoolEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := LogHandler(LogConfig{Writer: &buf})

	handler(NewEvent(PoolStarted, ""))

	output := buf.String()
	if !strings.Contains(output, "[pool.started]") {
		t.Errorf("expected output to contain [pool.started], got: %s", output)
	}
	if strings.Contains(output, "node=") {
		t.Errorf("pool event should not contain node info, got: %s", output)
	}
}

func TestLogHandler_WithError(t *testing.T) {
	var buf bytes.Buffer
	handler := LogHandler(LogConfig{Writer: &buf})

	handler(NewEvent(NodeFailed, "frontend").WithNode("app-shell").WithError(errors.New("boom")))

	output := buf.String()
	if !strings.Contains(output, `error="boom"`) {
		t.Errorf("expected output to contain error=\"boom\", got: %s", output)
	}
}

func TestLogHandler_WithWorker(t *testing.T) {
	var buf bytes.Buffer
	handler := LogHandler(LogConfig{Writer: &buf})

	handler(NewEvent(NodeSelected, "frontend").WithNode("app-shell").WithWorker("lease-1"))

	output := buf.String()
	if !strings.Contains(output, "worker=lease-1") {
		t.Errorf("expected output to contain worker=lease-1, got: %s", output)
	}
}
