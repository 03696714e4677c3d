package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/murmur-app/murmur-backend/internal/service"
)

type ConversationHandler struct {
	convSvc service.ConversationService
	msgSvc  service.MessageService
	relSvc  service.RelationshipService
}

func NewConversationHandler(convSvc service.ConversationService, msgSvc service.MessageService, relSvc service.RelationshipService) *ConversationHandler {
	return &ConversationHandler{convSvc: convSvc, msgSvc: msgSvc, relSvc: relSvc}
}

type CreateConversationRequest struct {
	PeerID uint64 `json:"peerId"`
}

type ConversationResponse struct {
	ConversationID uint64    `json:"conversationId"`
	OtherUserID    uint64    `json:"otherUserId"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

type InboxEntryResponse struct {
	ConversationID uint64             `json:"conversationId"`
	Other          PublicUserResponse `json:"other"`
	LastMessage    MessageResponse    `json:"lastMessage"`
	UnreadCount    int64              `json:"unreadCount"`
	LastActivityAt time.Time          `json:"lastActivityAt"`
}

type MessageRequest struct {
	Body string `json:"body"`
}

type MessageResponse struct {
	ID             uint64 `json:"id"`
	ConversationID uint64 `json:"conversationId"`
	SenderID       uint64 `json:"senderId"`
	Body           string `json:"body"`
	CreatedAt      string `json:"createdAt"`
	IsRead         bool   `json:"isRead"`
	Mine           bool   `json:"mine"`
}

// PollResponse is the incremental refresh payload: new messages plus whether
// the viewer may still reply and, if not, why.
type PollResponse struct {
	Messages []PollMessage `json:"messages"`
	CanReply bool          `json:"canReply"`
	Reason   string        `json:"reason,omitempty"`
}

type PollMessage struct {
	ID        uint64 `json:"id"`
	SenderID  uint64 `json:"senderId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	Mine      bool   `json:"mine"`
}

func toMessageResponse(m model.Message, viewer uint64) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339Nano),
		IsRead:         m.IsRead,
		Mine:           m.SenderID == viewer,
	}
}

func requireUID(c echo.Context) (uint64, bool) {
	uid, _ := c.Get("uid").(uint64)
	return uid, uid != 0
}

func conversationID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func (h *ConversationHandler) Create(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cv, err := h.convSvc.GetOrCreate(c.Request().Context(), uid, req.PeerID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ConversationResponse{
		ConversationID: cv.ID,
		OtherUserID:    cv.Other(uid),
		LastActivityAt: cv.LastActivityAt,
	})
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	summaries, err := h.convSvc.ListForUser(c.Request().Context(), uid, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]InboxEntryResponse, 0, len(summaries))
	for _, sm := range summaries {
		resp = append(resp, InboxEntryResponse{
			ConversationID: sm.Conversation.ID,
			Other: PublicUserResponse{
				ID:          sm.Other.ID,
				Username:    sm.Other.Username,
				DisplayName: sm.Other.DisplayName,
				AvatarURL:   sm.Other.AvatarURL,
			},
			LastMessage:    toMessageResponse(sm.LastMessage, uid),
			UnreadCount:    sm.UnreadCount,
			LastActivityAt: sm.Conversation.LastActivityAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Get(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	cv, err := h.convSvc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ConversationResponse{
		ConversationID: cv.ID,
		OtherUserID:    cv.Other(uid),
		LastActivityAt: cv.LastActivityAt,
	})
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	msgs, err := h.msgSvc.ListVisible(c.Request().Context(), convID, uid, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m, uid))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Poll(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	since, err := time.Parse(time.RFC3339Nano, c.QueryParam("since"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid since timestamp"))
	}

	msgs, err := h.msgSvc.ListSince(c.Request().Context(), convID, uid, since)
	if err != nil {
		return writeServiceError(c, err)
	}
	cv, err := h.convSvc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	decision, err := h.relSvc.CanMessage(c.Request().Context(), uid, cv.Other(uid))
	if err != nil {
		return writeServiceError(c, err)
	}

	resp := PollResponse{
		Messages: make([]PollMessage, 0, len(msgs)),
		CanReply: decision.Allowed,
		Reason:   string(decision.Reason),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, PollMessage{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Body:      m.Body,
			CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
			Mine:      m.SenderID == uid,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) CreateMessage(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.msgSvc.Send(c.Request().Context(), convID, uid, req.Body)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageResponse(*msg, uid))
}

func (h *ConversationHandler) DeleteMessage(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	msgID, err := strconv.ParseUint(c.Param("msgId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	if err := h.msgSvc.SoftDelete(c.Request().Context(), msgID, uid); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ConversationHandler) Delete(c echo.Context) error {
	uid, ok := requireUID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	if err := h.convSvc.DeleteForUser(c.Request().Context(), convID, uid); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
