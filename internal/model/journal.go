package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList 以 JSON 数组形式存入单个数据库列。
type StringList []string

// Value 实现 driver.Valuer 接口。
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口。
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported source type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// JournalEntry 对应于数据库中的 'journal_entries' 表，按设备私有。
type JournalEntry struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	DeviceID  string     `gorm:"type:varchar(64);index;not null" json:"-"`
	Title     string     `gorm:"type:varchar(200);not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Mood      string     `gorm:"type:varchar(32);not null;default:'neutral'" json:"mood"`
	Tags      StringList `gorm:"type:text" json:"tags"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"date"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
