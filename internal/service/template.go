package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/internal/cache"
	"invitegen/internal/formatter"
	"invitegen/internal/model"
	"invitegen/internal/model/dto"
	"invitegen/internal/queue"
	"invitegen/internal/repository"
	pkgerrors "invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/pkg/metrics"
	"invitegen/pkg/snowflake"
	"invitegen/pkg/validator"
)

// TemplateStore 模板持久化，只插入不修改
type TemplateStore interface {
	Create(ctx context.Context, t *model.EventTemplate) error
	List(ctx context.Context) ([]model.EventTemplate, error)
	Get(ctx context.Context, id int64) (*model.EventTemplate, error)
}

// TemplatePublisher 保存后的事件通知
type TemplatePublisher interface {
	PublishTemplateSaved(ctx context.Context, t *model.EventTemplate) error
}

// PreviewStore 预览文本缓存
type PreviewStore interface {
	Get(ctx context.Context, templateID int64) (string, bool)
	Set(ctx context.Context, templateID int64, text string) error
}

var (
	templateService *TemplateService
	templateOnce    sync.Once
)

func Template() *TemplateService {
	templateOnce.Do(func() {
		if templateService == nil {
			templateService = NewTemplateService(
				repository.NewTemplateRepository(),
				queue.NewPublisher(),
				cache.NewPreviewCache(),
			)
		}
	})

	return templateService
}

// SetTemplate 替换全局模板服务
func SetTemplate(s *TemplateService) {
	templateService = s
}

type TemplateService struct {
	store     TemplateStore
	publisher TemplatePublisher
	previews  PreviewStore
	validator *validator.Validator
	nextID    func() (int64, error)
	opts      formatter.Options
	log       *zap.Logger
}

// NewTemplateService publisher 和 previews 可以为 nil
func NewTemplateService(store TemplateStore, publisher TemplatePublisher, previews PreviewStore) *TemplateService {
	return &TemplateService{
		store:     store,
		publisher: publisher,
		previews:  previews,
		validator: validator.Default(),
		nextID:    snowflake.NextID,
		opts: formatter.Options{
			Location:  config.Cfg.InviteLocation(),
			ZoneLabel: config.Cfg.InviteTimezoneLabel,
		},
		log: logger.Component("template"),
	}
}

// Save 校验并保存一份快照，事件发布失败不影响保存结果
func (s *TemplateService) Save(ctx context.Context, req dto.SaveTemplateRequest) (*dto.TemplateItem, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, pkgerrors.TemplateInvalid.WithDetails(validator.Details(err))
	}

	t := req.ToModel()

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	t.ID = id

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.store.Create(ctx, t); err != nil {
		s.log.Error("Failed to save template", zap.Int64("template_id", id), zap.Error(err))
		return nil, err
	}

	metrics.RecordTemplateSaved(ctx, t.Recurring.Active())

	if s.publisher != nil {
		if err := s.publisher.PublishTemplateSaved(ctx, t); err != nil {
			s.log.Warn("Template saved without render event",
				zap.Int64("template_id", id),
				zap.Error(err),
			)
		}
	}

	s.log.Info("Template saved", zap.Int64("template_id", id), zap.String("title", t.Title))
	return toTemplateItem(t), nil
}

// List 全部模板，最新的在前
func (s *TemplateService) List(ctx context.Context) ([]dto.TemplateItem, error) {
	templates, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TemplateItem, 0, len(templates))
	for i := range templates {
		items = append(items, *toTemplateItem(&templates[i]))
	}
	return items, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*dto.TemplateItem, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTemplateItem(t), nil
}

// Preview 已保存模板的文本预览，优先读缓存
func (s *TemplateService) Preview(ctx context.Context, id string) (string, error) {
	templateID, err := parseTemplateID(id)
	if err != nil {
		return "", err
	}

	if s.previews != nil {
		if text, ok := s.previews.Get(ctx, templateID); ok {
			return text, nil
		}
	}

	t, err := s.get(ctx, templateID)
	if err != nil {
		return "", err
	}

	text := s.render(ctx, t)
	if s.previews != nil {
		if err := s.previews.Set(ctx, templateID, text); err != nil {
			s.log.Warn("Failed to cache preview", zap.Int64("template_id", templateID), zap.Error(err))
		}
	}
	return text, nil
}

// RenderForm 渲染未保存的表单，不做校验也不持久化
func (s *TemplateService) RenderForm(ctx context.Context, req dto.SaveTemplateRequest) string {
	return s.render(ctx, req.ToModel())
}

// RenderToCache worker 调用：渲染并写入预览缓存
func (s *TemplateService) RenderToCache(ctx context.Context, templateID int64) error {
	t, err := s.get(ctx, templateID)
	if err != nil {
		return err
	}
	if s.previews == nil {
		return nil
	}
	return s.previews.Set(ctx, templateID, s.render(ctx, t))
}

// ICS 导出 iCalendar
func (s *TemplateService) ICS(ctx context.Context, id string) (string, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}

	out, err := formatter.BuildICS(t, formatter.ICSOptions{Options: s.opts})
	if err != nil {
		if errors.Is(err, formatter.ErrMissingStart) {
			return "", pkgerrors.TemplateInvalid.WithMessage("Template has no date or time")
		}
		return "", pkgerrors.TemplateInvalid.WithMessage("%s", err.Error())
	}

	metrics.RecordTemplateRendered(ctx, "ics")
	return out, nil
}

// Occurrences 展开重复日期，非重复模板只返回一次
func (s *TemplateService) Occurrences(ctx context.Context, id string, limit int) (*dto.OccurrencesResponse, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	times, truncated, err := formatter.ExpandOccurrences(t, s.opts, limit)
	switch {
	case errors.Is(err, formatter.ErrNotRecurring):
		start, perr := formatter.StartTime(t, s.opts)
		if perr != nil {
			return nil, pkgerrors.TemplateInvalid.WithMessage("%s", perr.Error())
		}
		times = []time.Time{start}
	case errors.Is(err, formatter.ErrMissingStart):
		return nil, pkgerrors.TemplateInvalid.WithMessage("Template has no date or time")
	case err != nil:
		return nil, pkgerrors.TemplateInvalid.WithMessage("%s", err.Error())
	}

	out := make([]string, 0, len(times))
	for _, occ := range times {
		out = append(out, occ.In(s.opts.Location).Format("2006-01-02 15:04"))
	}
	return &dto.OccurrencesResponse{Occurrences: out, Truncated: truncated}, nil
}

func (s *TemplateService) render(ctx context.Context, t *model.EventTemplate) string {
	metrics.RecordTemplateRendered(ctx, "text")
	return formatter.FormatEventText(t, s.opts)
}

func (s *TemplateService) load(ctx context.Context, id string) (*model.EventTemplate, error) {
	templateID, err := parseTemplateID(id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, templateID)
}

func (s *TemplateService) get(ctx context.Context, id int64) (*model.EventTemplate, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, pkgerrors.TemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

func parseTemplateID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, pkgerrors.TemplateIDInvalid
	}
	return n, nil
}

func toTemplateItem(t *model.EventTemplate) *dto.TemplateItem {
	return &dto.TemplateItem{
		ID:        strconv.FormatInt(t.ID, 10),
		Title:     t.Title,
		Date:      t.Date,
		Time:      t.Time,
		Location:  t.Location,
		Goal:      t.Goal,
		Agenda:    t.Agenda,
		RSVP:      t.RSVP,
		Recurring: t.Recurring,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
