package repository

import (
	"askher-go/internal/model"

	"gorm.io/gorm"
)

// QuestionRepository 定义论坛问题的持久化操作。
type QuestionRepository interface {
	Create(question *model.QuestionRecord) error
	FindByID(id string) (*model.QuestionRecord, error)
	FindAll() ([]model.QuestionRecord, error)
	FindByUserID(userID string) ([]model.QuestionRecord, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.QuestionRecord) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id string) (*model.QuestionRecord, error) {
	var q model.QuestionRecord
	if err := r.db.Where("id = ?", id).First(&q).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

// FindAll 按创建时间倒序返回全部问题。
func (r *questionRepository) FindAll() ([]model.QuestionRecord, error) {
	var qs []model.QuestionRecord
	err := r.db.Order("created_at DESC").Find(&qs).Error
	return qs, err
}

func (r *questionRepository) FindByUserID(userID string) ([]model.QuestionRecord, error) {
	var qs []model.QuestionRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&qs).Error
	return qs, err
}
