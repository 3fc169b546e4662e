package repository

import (
	"strings"

	"askher-go/internal/model"

	"gorm.io/gorm"
)

// JournalRepository 定义日记条目的持久化操作，所有查询都限定在单个设备内。
type JournalRepository interface {
	Create(entry *model.JournalEntry) error
	Update(entry *model.JournalEntry) error
	Delete(deviceID, id string) error
	FindByID(deviceID, id string) (*model.JournalEntry, error)
	// FindByDevice 按创建时间倒序返回条目；query 非空时在标题、正文和标签中做不区分大小写的匹配。
	FindByDevice(deviceID, query string) ([]model.JournalEntry, error)
}

type journalRepository struct {
	db *gorm.DB
}

// NewJournalRepository 创建一个新的 JournalRepository 实例。
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(entry *model.JournalEntry) error {
	return r.db.Create(entry).Error
}

func (r *journalRepository) Update(entry *model.JournalEntry) error {
	return r.db.Save(entry).Error
}

func (r *journalRepository) Delete(deviceID, id string) error {
	res := r.db.Where("device_id = ? AND id = ?", deviceID, id).Delete(&model.JournalEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *journalRepository) FindByID(deviceID, id string) (*model.JournalEntry, error) {
	var e model.JournalEntry
	if err := r.db.Where("device_id = ? AND id = ?", deviceID, id).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *journalRepository) FindByDevice(deviceID, query string) ([]model.JournalEntry, error) {
	db := r.db.Where("device_id = ?", deviceID)
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		like := "%" + q + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?", like, like, like)
	}
	var entries []model.JournalEntry
	err := db.Order("created_at DESC").Find(&entries).Error
	return entries, err
}
