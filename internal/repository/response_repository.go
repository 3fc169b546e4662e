package repository

import (
	"askher-go/internal/model"

	"gorm.io/gorm"
)

// ResponseRepository 定义论坛回复的持久化操作。
type ResponseRepository interface {
	Create(response *model.ResponseRecord) error
	FindByID(id string) (*model.ResponseRecord, error)
	FindAll() ([]model.ResponseRecord, error)
	FindByQuestionID(questionID string) ([]model.ResponseRecord, error)
	FindByUserID(userID string) ([]model.ResponseRecord, error)
	FindRecent(limit int) ([]model.ResponseRecord, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository 创建一个新的 ResponseRepository 实例。
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(response *model.ResponseRecord) error {
	return r.db.Create(response).Error
}

func (r *responseRepository) FindByID(id string) (*model.ResponseRecord, error) {
	var resp model.ResponseRecord
	if err := r.db.Where("id = ?", id).First(&resp).Error; err != nil {
		return nil, translate(err)
	}
	return &resp, nil
}

func (r *responseRepository) FindAll() ([]model.ResponseRecord, error) {
	var rs []model.ResponseRecord
	err := r.db.Order("created_at DESC").Find(&rs).Error
	return rs, err
}

// FindByQuestionID 按追加顺序（最早在前）返回某个问题的回复。
func (r *responseRepository) FindByQuestionID(questionID string) ([]model.ResponseRecord, error) {
	var rs []model.ResponseRecord
	err := r.db.Where("question_id = ?", questionID).Order("created_at ASC").Find(&rs).Error
	return rs, err
}

func (r *responseRepository) FindByUserID(userID string) ([]model.ResponseRecord, error) {
	var rs []model.ResponseRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rs).Error
	return rs, err
}

// FindRecent 返回最新的 limit 条回复。
func (r *responseRepository) FindRecent(limit int) ([]model.ResponseRecord, error) {
	var rs []model.ResponseRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&rs).Error
	return rs, err
}
