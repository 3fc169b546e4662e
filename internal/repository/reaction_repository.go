package repository

import (
	"askher-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository 管理回复上的点赞与评论。
type ReactionRepository interface {
	// AddUpvote 在同一用户已点赞时不重复写入，created 报告是否新增。
	AddUpvote(upvote *model.Upvote) (created bool, err error)
	CountUpvotes(responseID string) (int64, error)
	AddComment(comment *model.Comment) error
	FindComments(responseID string) ([]model.Comment, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository 创建一个新的 ReactionRepository 实例。
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) AddUpvote(upvote *model.Upvote) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(upvote)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reactionRepository) CountUpvotes(responseID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Upvote{}).Where("response_id = ?", responseID).Count(&count).Error
	return count, err
}

func (r *reactionRepository) AddComment(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// FindComments 按时间正序返回评论。
func (r *reactionRepository) FindComments(responseID string) ([]model.Comment, error) {
	var cs []model.Comment
	err := r.db.Where("response_id = ?", responseID).Order("created_at ASC").Find(&cs).Error
	return cs, err
}
