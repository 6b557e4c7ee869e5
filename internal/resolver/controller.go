package resolver

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"invitegen/internal/model"
	"invitegen/pkg/logger"
)

// MinQueryLength 少于这个字符数的查询不发远程搜索
const MinQueryLength = 2

// Searcher 网关的客户端视图，失败时返回空切片而不是错误
type Searcher interface {
	Search(ctx context.Context, query string, searchType model.SearchType) []model.Contact
	List(ctx context.Context) []model.Contact
}

// Field 表单里可以直接编辑的文本字段
type Field string

const (
	FieldTitle    Field = "title"
	FieldDate     Field = "date"
	FieldTime     Field = "time"
	FieldLocation Field = "location"
	FieldGoal     Field = "goal"
	FieldAgenda   Field = "agenda"
	FieldRSVP     Field = "rsvp"
)

// State 某一时刻的只读快照，交给 UI 渲染
type State struct {
	Query        string
	SearchType   model.SearchType
	Visible      []model.Contact
	Selected     []model.Contact
	Locations    []string
	IncludeExtra bool
	Form         model.EventTemplate
}

type Option func(*Controller)

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debouncer = NewDebouncer(d)
	}
}

// WithExtraParticipant 可选追加在参会人末尾的固定邮箱
func WithExtraParticipant(email string) Option {
	return func(c *Controller) {
		c.extraEmail = email
	}
}

// WithOnChange 每次状态变化后回调，在锁外调用
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// Controller 表单和联系人选择的状态对象，所有修改都经过命名的方法。
// 防抖定时器在独立的 goroutine 上回调，因此内部状态用互斥锁保护
type Controller struct {
	mu sync.Mutex

	searcher   Searcher
	debouncer  *Debouncer
	extraEmail string
	onChange   func(State)
	log        *zap.Logger

	query      string
	searchType model.SearchType
	remote     []model.Contact
	directory  []model.Contact

	selected     []model.Contact
	includeExtra bool
	form         model.EventTemplate

	// seq 每次发出远程搜索或清空结果时递增；applied 是已应用结果的序号，
	// 比它旧的响应直接丢弃
	seq     uint64
	applied uint64
}

func NewController(searcher Searcher, opts ...Option) *Controller {
	c := &Controller{
		searcher:   searcher,
		searchType: model.SearchTypeName,
		log:        logger.Component("resolver"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.debouncer == nil {
		c.debouncer = NewDebouncer(DefaultQuietPeriod)
	}
	return c
}

// LoadDirectory 拉取全量列表，作为本地过滤和地点补全的数据源
func (c *Controller) LoadDirectory(ctx context.Context) {
	contacts := c.searcher.List(ctx)

	c.mu.Lock()
	c.directory = contacts
	c.mu.Unlock()

	c.notify()
}

// SetSearchType 切换搜索类型，已有查询按新类型重新防抖
func (c *Controller) SetSearchType(ctx context.Context, t model.SearchType) {
	c.mu.Lock()
	if c.searchType != t {
		c.searchType = t
		c.resetRemoteLocked()
	}
	query := c.query
	c.mu.Unlock()

	c.SetQuery(ctx, query)
}

// SetQuery 输入变化：旧查询的远程结果立即作废，防抖期间显示本地过滤；
// 过短的查询同时取消待发的搜索，否则重新计时
func (c *Controller) SetQuery(ctx context.Context, query string) {
	c.mu.Lock()
	if strings.TrimSpace(query) != strings.TrimSpace(c.query) {
		c.resetRemoteLocked()
	}
	c.query = query
	short := utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength
	if short {
		c.resetRemoteLocked()
	}
	c.mu.Unlock()

	if short {
		c.debouncer.Cancel()
	} else {
		c.debouncer.Trigger(func() { c.search(ctx) })
	}

	c.notify()
}

// Flush 立即发出当前查询的搜索（回车等场景）
func (c *Controller) Flush(ctx context.Context) {
	c.mu.Lock()
	short := utf8.RuneCountInString(strings.TrimSpace(c.query)) < MinQueryLength
	c.mu.Unlock()
	if short {
		return
	}

	c.debouncer.Cancel()
	c.search(ctx)
}

func (c *Controller) search(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	query := strings.TrimSpace(c.query)
	searchType := c.searchType
	c.mu.Unlock()

	results := c.searcher.Search(ctx, query, searchType)
	c.applyResults(seq, results)
}

// resetRemoteLocked 清空远程结果，并让所有在途的搜索响应失效
func (c *Controller) resetRemoteLocked() {
	c.remote = nil
	c.seq++
	c.applied = c.seq
}

func (c *Controller) applyResults(seq uint64, results []model.Contact) {
	c.mu.Lock()
	if seq < c.applied {
		c.mu.Unlock()
		c.log.Debug("Dropping stale search response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", c.applied),
		)
		return
	}
	c.applied = seq
	c.remote = results
	c.mu.Unlock()

	c.notify()
}

// AddContact 按 id 幂等地加入参会人；地点为空时用联系人的地点补上
func (c *Controller) AddContact(contact model.Contact) {
	c.mu.Lock()
	for _, s := range c.selected {
		if s.ID == contact.ID {
			c.mu.Unlock()
			return
		}
	}

	c.selected = append(c.selected, contact)
	if c.form.Location == "" {
		if loc := contact.KnownLocation(); loc != "" {
			c.form.Location = loc
		}
	}
	c.recomputeAttendeesLocked()
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) RemoveContact(id string) {
	c.mu.Lock()
	kept := c.selected[:0:0]
	for _, s := range c.selected {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.selected = kept
	c.recomputeAttendeesLocked()
	c.mu.Unlock()

	c.notify()
}

// SetIncludeExtra 是否追加固定的额外参会人
func (c *Controller) SetIncludeExtra(include bool) {
	c.mu.Lock()
	c.includeExtra = include
	c.recomputeAttendeesLocked()
	c.mu.Unlock()

	c.notify()
}

// SetField 直接编辑表单字段。RSVP 也可以手动改，但下一次选择变化时会被重新计算覆盖
func (c *Controller) SetField(field Field, value string) {
	c.mu.Lock()
	switch field {
	case FieldTitle:
		c.form.Title = value
	case FieldDate:
		c.form.Date = value
	case FieldTime:
		c.form.Time = value
	case FieldLocation:
		c.form.Location = value
	case FieldGoal:
		c.form.Goal = value
	case FieldAgenda:
		c.form.Agenda = value
	case FieldRSVP:
		c.form.RSVP = value
	}
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) SetRecurring(p *model.RecurringPattern) {
	c.mu.Lock()
	if p != nil {
		cp := *p
		cp.DaysOfWeek = append([]string(nil), p.DaysOfWeek...)
		p = &cp
	}
	c.form.Recurring = p
	c.mu.Unlock()

	c.notify()
}

// LoadTemplate 用已保存的模板替换表单，已选联系人保留但不覆盖模板里的 RSVP
func (c *Controller) LoadTemplate(t model.EventTemplate) {
	c.mu.Lock()
	c.form = t
	c.mu.Unlock()

	c.notify()
}

// Snapshot 当前表单，用于保存或预览
func (c *Controller) Snapshot() model.EventTemplate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Attendees 当前的参会人字符串
func (c *Controller) Attendees() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.RSVP
}

// Visible 远程结果非空时只展示远程结果，否则对全量列表做本地过滤
func (c *Controller) Visible() []model.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

func (c *Controller) Locations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locationsLocked()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Query:        c.query,
		SearchType:   c.searchType,
		Visible:      c.visibleLocked(),
		Selected:     append([]model.Contact(nil), c.selected...),
		Locations:    c.locationsLocked(),
		IncludeExtra: c.includeExtra,
		Form:         c.form,
	}
}

// Close 取消待发的搜索
func (c *Controller) Close() {
	c.debouncer.Cancel()
}

func (c *Controller) visibleLocked() []model.Contact {
	if len(c.remote) > 0 {
		return append([]model.Contact(nil), c.remote...)
	}
	return FilterLocal(c.directory, c.query)
}

func (c *Controller) locationsLocked() []string {
	known := make([]model.Contact, 0, len(c.directory)+len(c.remote))
	known = append(known, c.directory...)
	known = append(known, c.remote...)
	return UniqueLocations(known)
}

// recomputeAttendeesLocked 整体重算：已选联系人的邮箱（跳过空的），再加上额外参会人
func (c *Controller) recomputeAttendeesLocked() {
	c.form.RSVP = AttendeeString(c.selected, c.includeExtra, c.extraEmail)
}

// AttendeeString 用 ", " 连接参会人邮箱
func AttendeeString(selected []model.Contact, includeExtra bool, extraEmail string) string {
	emails := make([]string, 0, len(selected)+1)
	for _, s := range selected {
		if s.Email != "" {
			emails = append(emails, s.Email)
		}
	}
	if includeExtra && extraEmail != "" {
		emails = append(emails, extraEmail)
	}
	return strings.Join(emails, ", ")
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}
