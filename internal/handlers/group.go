package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/groupchat-backend/internal/requestdata"
	"github.com/yungbote/groupchat-backend/internal/services"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// currentUserID pulls the authenticated user from request context. The
// auth middleware guarantees it for protected routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "no_session", fmt.Errorf("no authenticated user in context"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s: %w", name, err))
		return uuid.Nil, false
	}
	return id, true
}

func (gh *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		MemberIDs   []uuid.UUID `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	group, err := gh.groupService.CreateGroup(c.Request.Context(), userID, req.Name, req.Description, req.MemberIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"group": group})
}

func (gh *GroupHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groups, err := gh.groupService.ListGroups(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"groups": groups})
}

func (gh *GroupHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	group, members, err := gh.groupService.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"group": group, "members": members})
}

func (gh *GroupHandler) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	if err := gh.groupService.JoinGroup(c.Request.Context(), userID, groupID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"joined": true})
}

func (gh *GroupHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	if err := gh.groupService.DeleteGroup(c.Request.Context(), userID, groupID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (gh *GroupHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	if err := gh.groupService.LeaveGroup(c.Request.Context(), userID, groupID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"left": true})
}
