package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/groupchat-backend/internal/services"
	"github.com/yungbote/groupchat-backend/internal/types"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(noteService services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (nh *NoteHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	notes, err := nh.noteService.ListNotes(c.Request.Context(), userID, groupID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"notes": notes})
}

func (nh *NoteHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	var req struct {
		Blocks []types.NoteBlock `json:"blocks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	note, err := nh.noteService.CreateNote(c.Request.Context(), userID, groupID, req.Blocks)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"note": note})
}

// Save replaces the note's full block sequence.
func (nh *NoteHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	noteID, ok := pathUUID(c, "note_id")
	if !ok {
		return
	}
	var req struct {
		Blocks []types.NoteBlock `json:"blocks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	note, err := nh.noteService.SaveNote(c.Request.Context(), userID, noteID, req.Blocks)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"note": note})
}

func (nh *NoteHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	noteID, ok := pathUUID(c, "note_id")
	if !ok {
		return
	}
	if err := nh.noteService.DeleteNote(c.Request.Context(), userID, noteID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
