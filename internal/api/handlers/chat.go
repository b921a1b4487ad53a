package handlers

import (
	"context"
	"net/http"
)

const msgMissingMessage = "Please provide a 'message'"

// MessageRouter answers one chat message. chat.Router satisfies it.
type MessageRouter interface {
	Route(ctx context.Context, message string) string
}

// ChatHandler serves POST /api/chat.
type ChatHandler struct {
	router MessageRouter
}

// NewChatHandler returns a handler over router.
func NewChatHandler(router MessageRouter) *ChatHandler {
	return &ChatHandler{router: router}
}

// ChatRequest is the /api/chat body. Message is required but may be empty.
type ChatRequest struct {
	Message *string `json:"message"`
}

// ChatResponse is the /api/chat reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(w, r, &req); err != nil || req.Message == nil {
		writeError(w, http.StatusUnprocessableEntity, msgMissingMessage)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: h.router.Route(r.Context(), *req.Message)})
}
