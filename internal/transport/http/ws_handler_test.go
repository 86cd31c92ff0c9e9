package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	server, service := newTestServer(t)
	state, err := service.Start(context.Background(), domain.QuestionRequest{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	conn := dial(t, server.URL, state.ID)

	// Expect the initial snapshot first.
	msgType, payload := readNext(conn, t, "state")
	var snapshot domain.SessionState
	decode(t, payload, &snapshot)
	if snapshot.ID != state.ID || snapshot.Locked {
		t.Fatalf("unexpected initial snapshot: %+v", snapshot)
	}

	send(t, conn, "answer", map[string]any{"selected": 1})
	msgType, payload = readNext(conn, t, "state")
	decode(t, payload, &snapshot)
	if msgType != "state" || snapshot.Score != 1 || !snapshot.Locked {
		t.Fatalf("expected scored locked snapshot, got %+v", snapshot)
	}

	send(t, conn, "answer", map[string]any{"selected": 0})
	readNext(conn, t, "error")

	send(t, conn, "teleport", nil)
	readNext(conn, t, "error")

	send(t, conn, "finish", nil)
	summarySeen := false
	for i := 0; i < 3 && !summarySeen; i++ {
		typ, payload := readNext(conn, t, "")
		if typ != "summary" {
			continue
		}
		var summary domain.Summary
		decode(t, payload, &summary)
		if summary.AnsweredQuestions != 1 || summary.Percentage != 100 || !summary.FinishedEarly {
			t.Fatalf("unexpected summary: %+v", summary)
		}
		summarySeen = true
	}
	if !summarySeen {
		t.Fatalf("expected summary after finish")
	}
}

func TestWebSocketStreamsTimerTicks(t *testing.T) {
	server, service := newTestServer(t, app.WithTimeLimit(2), app.WithTickInterval(10*time.Millisecond))
	state, err := service.Start(context.Background(), domain.QuestionRequest{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	conn := dial(t, server.URL, state.ID)

	for i := 0; i < 10; i++ {
		_, payload := readNext(conn, t, "state")
		var snapshot domain.SessionState
		decode(t, payload, &snapshot)
		if len(snapshot.Answers) == 1 {
			if !snapshot.Answers[0].TimedOut {
				t.Fatalf("expected timed out answer, got %+v", snapshot.Answers[0])
			}
			return
		}
	}
	t.Fatalf("question did not time out")
}

func TestWebSocketUnknownSession(t *testing.T) {
	server, _ := newTestServer(t)
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?sessionId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func dial(t *testing.T, serverURL, sessionID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func decode(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
}
