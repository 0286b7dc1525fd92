// File: internal/handlers/functions_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/middleware"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/conversation"
)

// CheckoutService creates hosted checkout sessions.
type CheckoutService interface {
	CreateCheckout(ctx context.Context, user *domain.User, planID, origin string) (string, error)
}

// FunctionsHandler serves the /functions/v1 endpoints. Every failure is
// answered with 500 and {"error": message}.
type FunctionsHandler struct {
	conversations conversation.ConversationService
	checkout      CheckoutService
	logger        services.Logger
}

func NewFunctionsHandler(conversations conversation.ConversationService, checkout CheckoutService, logger services.Logger) *FunctionsHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &FunctionsHandler{conversations: conversations, checkout: checkout, logger: logger}
}

type saveConversationResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversation_id"`
}

type conversationMessagesResponse struct {
	Conversation *domain.Conversation `json:"conversation"`
	Messages     []domain.Message     `json:"messages"`
}

type conversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
}

type checkoutRequest struct {
	PlanID string `json:"plan_id"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *FunctionsHandler) fail(w http.ResponseWriter, function string, err error) {
	h.logger.Error("function failed", "function", function, "error", err)
	writeError(w, err.Error(), http.StatusInternalServerError)
}

// SaveConversation handles POST save-conversation.
func (h *FunctionsHandler) SaveConversation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req conversation.SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "save-conversation", err)
		return
	}

	id, err := h.conversations.Save(r.Context(), user, req)
	if err != nil {
		h.fail(w, "save-conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, saveConversationResponse{Success: true, ConversationID: id})
}

// GetConversationMessages handles get-conversation-messages. The id comes
// from the JSON body or, for GET, the conversation_id query parameter.
func (h *FunctionsHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, "get-conversation-messages", err)
			return
		}
	}
	if req.ConversationID == "" {
		req.ConversationID = r.URL.Query().Get("conversation_id")
	}
	if req.ConversationID == "" {
		writeError(w, "Missing conversation_id", http.StatusInternalServerError)
		return
	}

	conv, msgs, err := h.conversations.GetMessages(r.Context(), user, req.ConversationID)
	if err != nil {
		h.fail(w, "get-conversation-messages", err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, conversationMessagesResponse{Conversation: conv, Messages: msgs})
}

// GetConversations handles get-conversations.
func (h *FunctionsHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	list, err := h.conversations.List(r.Context(), user)
	if err != nil {
		h.fail(w, "get-conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, conversationsResponse{Conversations: list})
}

// CreateCheckout handles POST create-checkout.
func (h *FunctionsHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "create-checkout", err)
		return
	}

	url, err := h.checkout.CreateCheckout(r.Context(), user, req.PlanID, r.Header.Get("Origin"))
	if err != nil {
		h.fail(w, "create-checkout", err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
}
