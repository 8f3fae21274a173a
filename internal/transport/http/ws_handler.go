package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizbank-service/internal/app"
	"quizbank-service/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
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

type selectPayload struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type noQuestionsPayload struct {
	QuestionBankID string `json:"questionBankId"`
	Message        string `json:"message"`
}

// ServeWS upgrades the request, starts a quiz session for the requested bank
// and streams its state until the client disconnects. Disconnecting abandons
// the session without recording an attempt.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	bankID := r.URL.Query().Get("bankId")
	userID := r.URL.Query().Get("userId")
	if bankID == "" {
		http.Error(w, "missing bankId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	started, err := h.service.StartQuiz(r.Context(), bankID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBank) {
			_ = conn.WriteJSON(outboundMessage{Type: "noQuestions", Payload: noQuestionsPayload{
				QuestionBankID: bankID,
				Message:        "No questions available for this quiz yet.",
			}})
			return
		}
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := started.SessionID
	defer h.service.Abandon(sessionID)

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not allow concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				conn.Close()
				return
			}
		}
	}()

	push := func(msg outboundMessage) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		case <-closeSignals:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if !push(outboundMessage{Type: "state", Payload: snap}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, sessionID, inbound); err != nil {
			if !push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one participant intent. State changes reach the client
// through the subscription, so only failures are reported here.
func (h *WSHandler) dispatch(r *http.Request, sessionID string, inbound inboundMessage) error {
	var err error
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil || payload.Option == nil {
			return errors.New("invalid select payload")
		}
		_, err = h.service.SelectAnswer(sessionID, payload.QuestionID, *payload.Option)
	case "next":
		_, err = h.service.Next(sessionID)
	case "previous":
		_, err = h.service.Previous(sessionID)
	case "submit":
		_, err = h.service.Submit(r.Context(), sessionID)
		if err != nil {
			log.Printf("session %s: submit failed: %v", sessionID, err)
			err = errors.New("failed to submit quiz, please retry")
		}
	case "retake":
		_, err = h.service.Retake(sessionID)
	default:
		err = errors.New("unsupported message type")
	}
	return err
}
