package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/groupchat-backend/internal/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (mh *MessageHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	msgs, err := mh.messageService.ListMessages(c.Request.Context(), userID, groupID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}

// Send accepts multipart form data: "content" and "reply_to" fields
// plus any number of "files" parts.
func (mh *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form", err)
		return
	}
	content := c.PostForm("content")
	var replyTo *uuid.UUID
	if raw := c.PostForm("reply_to"); raw != "" {
		id, pErr := uuid.Parse(raw)
		if pErr != nil {
			RespondError(c, http.StatusBadRequest, "invalid_reply_to", pErr)
			return
		}
		replyTo = &id
	}

	var files []services.MessageUpload
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, header := range form.File["files"] {
		f, oErr := header.Open()
		if oErr != nil {
			RespondError(c, http.StatusBadRequest, "unreadable_file", oErr)
			return
		}
		opened = append(opened, f)
		files = append(files, services.MessageUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        f,
		})
	}

	msg, err := mh.messageService.SendMessage(c.Request.Context(), userID, groupID, content, replyTo, files)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

// AddAttachment records an attachment for an object the client already
// uploaded through the object endpoints.
func (mh *MessageHandler) AddAttachment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	var req struct {
		FileURL  string `json:"file_url"`
		FileType string `json:"file_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	att, err := mh.messageService.AddAttachment(c.Request.Context(), userID, messageID, req.FileURL, req.FileType)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"attachment": att})
}

func (mh *MessageHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	if err := mh.messageService.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
