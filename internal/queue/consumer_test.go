package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitegen/internal/model"
	pkgerrors "invitegen/pkg/errors"
)

type fakeRenderer struct {
	ids []int64
	err error
}

func (r *fakeRenderer) RenderToCache(ctx context.Context, id int64) error {
	r.ids = append(r.ids, id)
	return r.err
}

type memDeduper struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (d *memDeduper) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func (d *memDeduper) Unlock(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.keys, key)
	return nil
}

func TestTemplateSavedHandlerDeduplicates(t *testing.T) {
	r := &fakeRenderer{}
	h := NewTemplateSavedHandler(r, &memDeduper{keys: map[string]bool{}})
	body := []byte(`{"message_id":"m-1","template_id":"42","saved_at":"2024-01-01T00:00:00Z"}`)

	require.NoError(t, h.Handle(context.Background(), body))
	require.NoError(t, h.Handle(context.Background(), body))

	assert.Equal(t, []int64{42}, r.ids)
}

func TestTemplateSavedHandlerReleasesOnFailure(t *testing.T) {
	r := &fakeRenderer{err: errors.New("db down")}
	d := &memDeduper{keys: map[string]bool{}}
	h := NewTemplateSavedHandler(r, d)

	err := h.Handle(context.Background(), []byte(`{"message_id":"m-2","template_id":"7"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template 7")
	assert.Empty(t, d.keys)
}

func TestTemplateSavedHandlerDedupErrorStillRenders(t *testing.T) {
	r := &fakeRenderer{}
	h := NewTemplateSavedHandler(r, &memDeduper{keys: map[string]bool{}, err: errors.New("redis down")})

	require.NoError(t, h.Handle(context.Background(), []byte(`{"message_id":"m-3","template_id":"9"}`)))
	assert.Equal(t, []int64{9}, r.ids)
}

func TestTemplateSavedHandlerBadPayload(t *testing.T) {
	h := NewTemplateSavedHandler(&fakeRenderer{}, &memDeduper{keys: map[string]bool{}})
	assert.Error(t, h.Handle(context.Background(), []byte(`not json`)))
}

func TestPublisherBuildsMessage(t *testing.T) {
	var gotKey, gotID string
	var gotBody interface{}

	p := &Publisher{
		enabled: func() bool { return true },
		publish: func(ctx context.Context, exchange, routingKey, messageID string, body interface{}) error {
			gotKey = routingKey
			gotID = messageID
			gotBody = body
			return nil
		},
	}

	require.NoError(t, p.PublishTemplateSaved(context.Background(), &model.EventTemplate{BaseModel: model.BaseModel{ID: 5}}))
	assert.Equal(t, "template.saved", gotKey)
	assert.NotEmpty(t, gotID)

	msg, ok := gotBody.(TemplateSavedMessage)
	require.True(t, ok)
	assert.Equal(t, int64(5), msg.TemplateID)
	assert.Equal(t, gotID, msg.MessageID)
}

func TestPublisherDisabled(t *testing.T) {
	p := &Publisher{enabled: func() bool { return false }}
	err := p.PublishTemplateSaved(context.Background(), &model.EventTemplate{})
	assert.ErrorIs(t, err, pkgerrors.ErrPublisherUnavailable)
}
