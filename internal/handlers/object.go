package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/groupchat-backend/internal/services"
)

// ObjectHandler gives clients direct object storage access, namespaced
// per group. Clients that upload themselves pair these endpoints with
// the message attachment endpoint.
type ObjectHandler struct {
	bucket       services.BucketService
	groupService services.GroupService
}

func NewObjectHandler(bucket services.BucketService, groupService services.GroupService) *ObjectHandler {
	return &ObjectHandler{bucket: bucket, groupService: groupService}
}

// Upload stores a file under a caller-chosen path. The path's first
// segment must be the group id, keeping uploads inside the group's
// namespace.
func (oh *ObjectHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, "group_id")
	if !ok {
		return
	}
	if err := oh.groupService.RequireMember(c.Request.Context(), userID, groupID); err != nil {
		RespondServiceError(c, err)
		return
	}

	objPath := strings.TrimSpace(c.PostForm("path"))
	if !strings.HasPrefix(objPath, groupID.String()+"/") || strings.Contains(objPath, "..") {
		RespondError(c, http.StatusBadRequest, "invalid_path",
			fmt.Errorf("path must live under %s/", groupID))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := header.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()

	if err := oh.bucket.UploadFile(c.Request.Context(), objPath, f); err != nil {
		RespondError(c, http.StatusBadGateway, "upload_failed", err)
		return
	}
	RespondOK(c, gin.H{"path": objPath, "url": oh.bucket.GetPublicURL(objPath)})
}

// Remove deletes objects best-effort: unauthorized or failing paths are
// skipped, the rest are removed.
func (oh *ObjectHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Paths []string `json:"paths"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	removed := 0
	for _, objPath := range req.Paths {
		groupID, err := groupFromPath(objPath)
		if err != nil {
			continue
		}
		if err := oh.groupService.RequireMember(c.Request.Context(), userID, groupID); err != nil {
			continue
		}
		if err := oh.bucket.DeleteFile(c.Request.Context(), objPath); err != nil {
			continue
		}
		removed++
	}
	RespondOK(c, gin.H{"removed": removed})
}

func groupFromPath(objPath string) (uuid.UUID, error) {
	seg, _, ok := strings.Cut(objPath, "/")
	if !ok {
		return uuid.Nil, fmt.Errorf("path %q has no group segment", objPath)
	}
	return uuid.Parse(seg)
}
