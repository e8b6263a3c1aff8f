package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contest-round-service/internal/app"
	"contest-round-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketSubmissionFlow(t *testing.T) {
	service := app.NewRoundService(memory.NewSessionStore(), memory.NewTeamRegistry(), app.Options{})
	service.StartQuestion(1, time.Minute, 10*time.Second)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?teamId=team-1&name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Joining registers the team and reports the active round.
	msgType, payload := readNext(conn, t, "joined")
	if msgType != "joined" {
		t.Fatalf("expected joined, got %s", msgType)
	}
	if active, ok := payload["activeQuestionId"].(float64); !ok || int(active) != 1 {
		t.Fatalf("expected active question 1 in joined payload, got %v", payload["activeQuestionId"])
	}
	if _, ok := service.GetTeamSubmission(1, "team-1"); !ok {
		t.Fatalf("expected team backfilled into the running round")
	}

	subscribe := map[string]any{
		"type":    "subscribe",
		"payload": map[string]any{"questionId": 1},
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	readNext(conn, t, "leaderboard") // initial snapshot

	submission := map[string]any{
		"type": "submission",
		"payload": map[string]any{
			"questionId": 1,
			"correct":    true,
			"score":      88,
		},
	}
	if err := conn.WriteJSON(submission); err != nil {
		t.Fatalf("write submission: %v", err)
	}

	// Expect submissionResult plus a pushed leaderboard, in either order.
	resultSeen := false
	leaderboardSeen := false
	for i := 0; i < 3; i++ {
		typ, _ := readNext(conn, t, "")
		switch typ {
		case "submissionResult":
			resultSeen = true
		case "leaderboard":
			leaderboardSeen = true
		}
		if resultSeen && leaderboardSeen {
			break
		}
	}
	if !resultSeen || !leaderboardSeen {
		t.Fatalf("expected submissionResult and leaderboard, got result=%v leaderboard=%v", resultSeen, leaderboardSeen)
	}

	sub, _ := service.GetTeamSubmission(1, "team-1")
	if !sub.IsCompleted || sub.FinalScore != 88 {
		t.Fatalf("expected recorded completion, got %+v", sub)
	}
}

func TestWebSocketRejectsClosedRound(t *testing.T) {
	service := app.NewRoundService(memory.NewSessionStore(), memory.NewTeamRegistry(), app.Options{})
	service.StartQuestion(1, time.Minute, 10*time.Second)
	service.StopQuestion(1)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?teamId=team-1&name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "joined")

	submission := map[string]any{
		"type": "submission",
		"payload": map[string]any{
			"questionId": 1,
			"correct":    true,
			"score":      88,
		},
	}
	if err := conn.WriteJSON(submission); err != nil {
		t.Fatalf("write submission: %v", err)
	}

	readNext(conn, t, "error")
	if sub, _ := service.GetTeamSubmission(1, "team-1"); len(sub.SubmitTimes) != 0 {
		t.Fatalf("expected no submission recorded into a closed round, got %+v", sub)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
