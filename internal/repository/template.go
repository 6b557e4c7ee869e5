package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"invitegen/internal/model"
	"invitegen/storage/database"
)

// ErrNotFound 模板不存在
var ErrNotFound = errors.New("template not found")

// TemplateRepository 模板只支持插入和读取
type TemplateRepository struct {
	db func() *gorm.DB
}

// NewTemplateRepository 使用全局数据库连接
func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{db: database.DB}
}

// NewTemplateRepositoryWithDB 使用指定连接
func NewTemplateRepositoryWithDB(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: func() *gorm.DB { return db }}
}

func (r *TemplateRepository) conn(ctx context.Context) (*gorm.DB, error) {
	db := r.db()
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return db.WithContext(ctx), nil
}

// Create 插入快照，ID 由调用方分配
func (r *TemplateRepository) Create(ctx context.Context, t *model.EventTemplate) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(t).Error
}

// List 全部模板，按创建时间倒序
func (r *TemplateRepository) List(ctx context.Context) ([]model.EventTemplate, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]model.EventTemplate, 0)
	if err := db.Order("created_at DESC").Order("id DESC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Get 按 ID 读取，不存在时返回 ErrNotFound
func (r *TemplateRepository) Get(ctx context.Context, id int64) (*model.EventTemplate, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var t model.EventTemplate
	if err := db.Where("id = ?", id).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
