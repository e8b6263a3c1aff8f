package http

import (
	"encoding/json"
	"net/http"

	"contest-round-service/internal/app"
	"contest-round-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WSHandler struct {
	service  *app.RoundService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoundService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submissionPayload struct {
	QuestionID int     `json:"questionId"` // 0 means the current active question
	Correct    bool    `json:"correct"`
	Score      float64 `json:"score"`
}

type subscribePayload struct {
	QuestionID int `json:"questionId"`
}

type joinedPayload struct {
	Team             domain.RegisteredTeam `json:"team"`
	ActiveQuestionID *int                  `json:"activeQuestionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection, registers the team (backfilling it into
// every tracked round), and wires submissions and leaderboard subscriptions
// into the round use cases. Submissions are gated on the admission window
// here — the ledger itself does not enforce it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("teamId")
	teamName := r.URL.Query().Get("name")
	if teamID == "" || teamName == "" {
		http.Error(w, "missing teamId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	teamSessionID := uuid.NewString()
	h.service.AddTeamToActiveSessions(teamID, teamName, teamSessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	var activeID *int
	if id, ok := h.service.GetCurrentActiveQuestionID(); ok {
		activeID = &id
	}
	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		Team:             domain.RegisteredTeam{TeamID: teamID, TeamName: teamName, TeamSessionID: teamSessionID},
		ActiveQuestionID: activeID,
	}}

	// At most one leaderboard subscription per connection; re-subscribing
	// replaces the previous one.
	var cancelSub func()
	var pumpDone chan struct{}
	stopSub := func() {
		if cancelSub != nil {
			cancelSub()
			<-pumpDone
			cancelSub = nil
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submission":
			var payload submissionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submission payload"}}
				continue
			}
			questionID := payload.QuestionID
			if questionID == 0 {
				id, ok := h.service.GetCurrentActiveQuestionID()
				if !ok {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "no active question"}}
					continue
				}
				questionID = id
			}
			if !h.service.IsQuestionActive(questionID) {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "question is not accepting submissions"}}
				continue
			}
			sub, err := h.service.RecordSubmission(questionID, teamID, payload.Correct, payload.Score, teamName, teamSessionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "submissionResult", Payload: sub}
		case "subscribe":
			var payload subscribePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid subscribe payload"}}
				continue
			}
			updates, cancel, err := h.service.Subscribe(payload.QuestionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			stopSub()
			cancelSub = cancel
			pumpDone = make(chan struct{})
			go func(updates <-chan domain.Leaderboard, done chan struct{}) {
				defer close(done)
				for {
					select {
					case update, ok := <-updates:
						if !ok {
							return
						}
						select {
						case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
						case <-closeSignals:
							return
						}
					case <-closeSignals:
						return
					}
				}
			}(updates, pumpDone)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	stopSub()
	close(send)
	<-writerDone
}
