package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitegen/internal/formatter"
	"invitegen/internal/model"
	"invitegen/internal/model/dto"
	"invitegen/internal/repository"
	pkgerrors "invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/pkg/validator"
)

type memTemplateStore struct {
	mu    sync.Mutex
	items []model.EventTemplate
	err   error
}

func (s *memTemplateStore) Create(ctx context.Context, t *model.EventTemplate) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *t)
	return nil
}

func (s *memTemplateStore) List(ctx context.Context) ([]model.EventTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.EventTemplate, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

func (s *memTemplateStore) Get(ctx context.Context, id int64) (*model.EventTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			t := s.items[i]
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakePublisher struct {
	published []int64
	err       error
}

func (p *fakePublisher) PublishTemplateSaved(ctx context.Context, t *model.EventTemplate) error {
	p.published = append(p.published, t.ID)
	return p.err
}

type memPreviews struct {
	texts map[int64]string
	gets  int
}

func (m *memPreviews) Get(ctx context.Context, id int64) (string, bool) {
	m.gets++
	text, ok := m.texts[id]
	return text, ok
}

func (m *memPreviews) Set(ctx context.Context, id int64, text string) error {
	if m.texts == nil {
		m.texts = make(map[int64]string)
	}
	m.texts[id] = text
	return nil
}

func newTestTemplateService(store TemplateStore, pub TemplatePublisher, previews PreviewStore) *TemplateService {
	var seq int64 = 1000
	return &TemplateService{
		store:     store,
		publisher: pub,
		previews:  previews,
		validator: validator.New(),
		nextID: func() (int64, error) {
			seq++
			return seq, nil
		},
		opts: formatter.DefaultOptions(),
		log:  logger.Component("template"),
	}
}

func validRequest() dto.SaveTemplateRequest {
	return dto.SaveTemplateRequest{
		Title:    "Team Sync",
		Date:     "2024-03-15",
		Time:     "14:00",
		Location: "Room A",
		Agenda:   "1. Intro",
		RSVP:     "a@x.com, b@x.com",
	}
}

func TestTemplateSaveAndGet(t *testing.T) {
	store := &memTemplateStore{}
	pub := &fakePublisher{}
	svc := newTestTemplateService(store, pub, nil)
	ctx := context.Background()

	item, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "1001", item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, []int64{1001}, pub.published)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team Sync", got.Title)
	assert.Equal(t, "Room A", got.Location)
}

func TestTemplateSaveValidation(t *testing.T) {
	svc := newTestTemplateService(&memTemplateStore{}, nil, nil)

	req := validRequest()
	req.Title = ""
	req.Time = "25:00"

	_, err := svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.TemplateInvalid)

	details := pkgerrors.DetailsOf(err)
	assert.Equal(t, "required", details["title"])
	assert.Equal(t, "clock", details["time"])
}

func TestTemplateSaveRejectsBadRecurring(t *testing.T) {
	svc := newTestTemplateService(&memTemplateStore{}, nil, nil)

	req := validRequest()
	req.Recurring = &model.RecurringPattern{Enabled: true, Frequency: "yearly"}

	_, err := svc.Save(context.Background(), req)
	assert.ErrorIs(t, err, pkgerrors.TemplateInvalid)
}

func TestTemplateSavePublishFailureStillSaves(t *testing.T) {
	store := &memTemplateStore{}
	pub := &fakePublisher{err: pkgerrors.ErrPublisherUnavailable}
	svc := newTestTemplateService(store, pub, nil)

	item, err := svc.Save(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Len(t, store.items, 1)
}

func TestTemplateSaveStoreFailure(t *testing.T) {
	boom := errors.New("db down")
	pub := &fakePublisher{}
	svc := newTestTemplateService(&memTemplateStore{err: boom}, pub, nil)

	_, err := svc.Save(context.Background(), validRequest())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, pub.published)
}

func TestTemplateSaveIsSnapshot(t *testing.T) {
	store := &memTemplateStore{}
	svc := newTestTemplateService(store, nil, nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)
	second, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestTemplateGetErrors(t *testing.T) {
	svc := newTestTemplateService(&memTemplateStore{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "abc")
	assert.ErrorIs(t, err, pkgerrors.TemplateIDInvalid)

	_, err = svc.Get(ctx, "-3")
	assert.ErrorIs(t, err, pkgerrors.TemplateIDInvalid)

	_, err = svc.Get(ctx, "42")
	assert.ErrorIs(t, err, pkgerrors.TemplateNotFound)
}

func TestTemplatePreviewUsesCache(t *testing.T) {
	store := &memTemplateStore{}
	previews := &memPreviews{}
	svc := newTestTemplateService(store, nil, previews)
	ctx := context.Background()

	item, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)

	text, err := svc.Preview(ctx, item.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "🎯 **Event:** Team Sync")
	assert.Contains(t, text, "Friday, March 15, 2024")

	id, _ := strconv.ParseInt(item.ID, 10, 64)
	previews.texts[id] = "cached"

	text, err = svc.Preview(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", text)
}

func TestTemplateRenderToCache(t *testing.T) {
	store := &memTemplateStore{}
	previews := &memPreviews{}
	svc := newTestTemplateService(store, nil, previews)
	ctx := context.Background()

	item, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)
	id, _ := strconv.ParseInt(item.ID, 10, 64)

	require.NoError(t, svc.RenderToCache(ctx, id))
	assert.Contains(t, previews.texts[id], "Team Sync")

	assert.ErrorIs(t, svc.RenderToCache(ctx, 999999), pkgerrors.TemplateNotFound)
}

func TestTemplateRenderFormSkipsValidation(t *testing.T) {
	svc := newTestTemplateService(&memTemplateStore{}, nil, nil)

	req := validRequest()
	req.Time = ""
	assert.Empty(t, svc.RenderForm(context.Background(), req))

	req = validRequest()
	req.Title = "x"
	assert.Contains(t, svc.RenderForm(context.Background(), req), "**Event:** x")
}

func TestTemplateOccurrences(t *testing.T) {
	store := &memTemplateStore{}
	svc := newTestTemplateService(store, nil, nil)
	ctx := context.Background()

	single, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)

	resp, err := svc.Occurrences(ctx, single.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-15 14:00"}, resp.Occurrences)
	assert.False(t, resp.Truncated)

	req := validRequest()
	req.Recurring = &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, Occurrences: 3}
	daily, err := svc.Save(ctx, req)
	require.NoError(t, err)

	resp, err = svc.Occurrences(ctx, daily.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-15 14:00", "2024-03-16 14:00", "2024-03-17 14:00"}, resp.Occurrences)
}

func TestTemplateICS(t *testing.T) {
	store := &memTemplateStore{}
	svc := newTestTemplateService(store, nil, nil)
	ctx := context.Background()

	item, err := svc.Save(ctx, validRequest())
	require.NoError(t, err)

	out, err := svc.ICS(ctx, item.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Team Sync")

	req := validRequest()
	req.Date = ""
	undated, err := svc.Save(ctx, req)
	require.NoError(t, err)

	_, err = svc.ICS(ctx, undated.ID)
	assert.ErrorIs(t, err, pkgerrors.TemplateInvalid)
}

func TestToTemplateItemFormatsID(t *testing.T) {
	now := time.Now()
	tpl := &model.EventTemplate{Title: "x"}
	tpl.ID = 1234567890123
	tpl.CreatedAt = now

	item := toTemplateItem(tpl)
	assert.Equal(t, "1234567890123", item.ID)
	assert.Equal(t, now, item.CreatedAt)
}
