package resolver

import (
	"sync"
	"time"
)

// DefaultQuietPeriod 最后一次输入之后等待的时间
const DefaultQuietPeriod = 500 * time.Millisecond

// Debouncer 单槽位的延迟任务：每次 Trigger 都会先取消尚未触发的任务
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	// gen 区分新旧任务，Stop 失败（定时器已到期但回调未执行）时旧任务靠它自行放弃
	gen uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultQuietPeriod
	}
	return &Debouncer{delay: delay}
}

// Trigger 安排 fn 在安静期之后执行，替换掉之前的任务
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel 丢弃尚未执行的任务，已经开始执行的不受影响
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
}

// Pending 是否有尚未触发的任务
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
