package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"askher-go/internal/community"
	"askher-go/internal/model"
	"askher-go/internal/repository"
	"askher-go/pkg/log"
	"askher-go/pkg/storage"

	"github.com/google/uuid"
)

// ExportLinkTTL 是日记导出下载链接的有效期。
const ExportLinkTTL = 15 * time.Minute

// Moods 是日记支持的心情取值。
var Moods = []string{"great", "good", "neutral", "down", "struggling"}

// JournalInput 是创建或更新日记条目时的请求体。
type JournalInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

// JournalExport 描述一次导出的结果。
type JournalExport struct {
	ObjectName string    `json:"objectName"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Entries    int       `json:"entries"`
}

// JournalService 定义了私密日记的业务逻辑。
type JournalService interface {
	List(deviceID, query string) ([]model.JournalEntry, error)
	Create(deviceID string, input JournalInput) (*model.JournalEntry, error)
	Update(deviceID, id string, input JournalInput) (*model.JournalEntry, error)
	Delete(deviceID, id string) error
	Export(ctx context.Context, deviceID string) (*JournalExport, error)
}

type journalService struct {
	repo    repository.JournalRepository
	objects storage.ObjectStore
	newID   func() string
	now     func() time.Time
}

// NewJournalService 创建一个新的 JournalService。objects 为 nil 时导出不可用。
func NewJournalService(repo repository.JournalRepository, objects storage.ObjectStore) JournalService {
	return &journalService{repo: repo, objects: objects, newID: uuid.NewString, now: time.Now}
}

func normalizeJournalInput(input JournalInput) (JournalInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if input.Title == "" || input.Content == "" {
		return input, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	input.Mood = strings.ToLower(strings.TrimSpace(input.Mood))
	if input.Mood == "" {
		input.Mood = "neutral"
	}
	if !contains(Moods, input.Mood) {
		return input, fmt.Errorf("%w: unknown mood %q", ErrValidation, input.Mood)
	}
	tags, err := community.NormalizeTags(input.Tags)
	if err != nil {
		return input, err
	}
	input.Tags = tags
	return input, nil
}

func (s *journalService) List(deviceID, query string) ([]model.JournalEntry, error) {
	return s.repo.FindByDevice(deviceID, query)
}

func (s *journalService) Create(deviceID string, input JournalInput) (*model.JournalEntry, error) {
	input, err := normalizeJournalInput(input)
	if err != nil {
		return nil, err
	}
	now := s.now()
	entry := &model.JournalEntry{
		ID:        s.newID(),
		DeviceID:  deviceID,
		Title:     input.Title,
		Content:   input.Content,
		Mood:      input.Mood,
		Tags:      model.StringList(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(entry); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return entry, nil
}

func (s *journalService) Update(deviceID, id string, input JournalInput) (*model.JournalEntry, error) {
	input, err := normalizeJournalInput(input)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.FindByID(deviceID, id)
	if err != nil {
		return nil, notFound(err, "journal entry %q", id)
	}
	entry.Title = input.Title
	entry.Content = input.Content
	entry.Mood = input.Mood
	entry.Tags = model.StringList(input.Tags)
	entry.UpdatedAt = s.now()
	if err := s.repo.Update(entry); err != nil {
		return nil, fmt.Errorf("update journal entry: %w", err)
	}
	return entry, nil
}

func (s *journalService) Delete(deviceID, id string) error {
	if err := s.repo.Delete(deviceID, id); err != nil {
		return notFound(err, "journal entry %q", id)
	}
	return nil
}

// Export 把设备的全部日记打包为 JSON 上传到对象存储，并返回限时下载链接。
func (s *journalService) Export(ctx context.Context, deviceID string) (*JournalExport, error) {
	if s.objects == nil {
		return nil, errors.New("journal export is not configured")
	}
	entries, err := s.repo.FindByDevice(deviceID, "")
	if err != nil {
		return nil, fmt.Errorf("load journal entries: %w", err)
	}
	now := s.now()
	payload, err := json.MarshalIndent(map[string]interface{}{
		"exportedAt": now,
		"entries":    entries,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal journal export: %w", err)
	}
	objectName := fmt.Sprintf("exports/%s/journal-%s.json", deviceID, now.UTC().Format("20060102T150405Z"))
	if err := s.objects.Put(ctx, objectName, "application/json", payload); err != nil {
		return nil, err
	}
	url, err := s.objects.PresignedURL(ctx, objectName, ExportLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign journal export: %w", err)
	}
	log.Infof("[JournalService] 日记导出完成, device: %s, entries: %d", deviceID, len(entries))
	return &JournalExport{
		ObjectName: objectName,
		URL:        url,
		ExpiresAt:  now.Add(ExportLinkTTL),
		Entries:    len(entries),
	}, nil
}

// notFound 把 repository.ErrNotFound 转换为服务层的 ErrNotFound，其他错误原样返回。
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
