package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/groupchat-backend/internal/platform/logger"
	"github.com/yungbote/groupchat-backend/internal/repos"
)

type Repos struct {
	User              repos.UserRepo
	UserToken         repos.UserTokenRepo
	OTPCode           repos.OTPCodeRepo
	Group             repos.GroupRepo
	GroupMember       repos.GroupMemberRepo
	Message           repos.MessageRepo
	MessageAttachment repos.MessageAttachmentRepo
	Note              repos.NoteRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		UserToken:         repos.NewUserTokenRepo(db, log),
		OTPCode:           repos.NewOTPCodeRepo(db, log),
		Group:             repos.NewGroupRepo(db, log),
		GroupMember:       repos.NewGroupMemberRepo(db, log),
		Message:           repos.NewMessageRepo(db, log),
		MessageAttachment: repos.NewMessageAttachmentRepo(db, log),
		Note:              repos.NewNoteRepo(db, log),
	}
}
