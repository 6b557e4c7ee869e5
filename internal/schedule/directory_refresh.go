package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"invitegen/internal/cache"
	"invitegen/internal/service"
	"invitegen/pkg/logger"
)

const (
	refreshLockKey = "directory:refresh"
	// 单次刷新的上限，同时作为锁的 TTL
	refreshTimeout = 2 * time.Minute
)

// Refresher 重新拉取通讯录并写回缓存
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Locker 多个 scheduler 实例之间互斥
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type redisLocker struct{}

func (redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return cache.TryLock(ctx, key, ttl)
}

func (redisLocker) Unlock(ctx context.Context, key string) error {
	return cache.Unlock(ctx, key)
}

// DirectoryRefresher 定时刷新全量联系人缓存
type DirectoryRefresher struct {
	refresher Refresher
	locker    Locker
	log       *zap.Logger
}

func NewDirectoryRefresher(refresher Refresher, locker Locker) *DirectoryRefresher {
	return &DirectoryRefresher{
		refresher: refresher,
		locker:    locker,
		log:       logger.Component("scheduler"),
	}
}

// DefaultDirectoryRefresher 使用全局通讯录服务和 Redis 锁
func DefaultDirectoryRefresher() *DirectoryRefresher {
	return NewDirectoryRefresher(service.Directory(), redisLocker{})
}

// RunOnce 执行一次刷新。拿不到锁说明其它实例正在刷新，直接跳过；
// Redis 不可用时不加锁继续刷新
func (r *DirectoryRefresher) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if r.locker != nil {
		ok, err := r.locker.TryLock(ctx, refreshLockKey, refreshTimeout)
		switch {
		case errors.Is(err, cache.ErrCacheUnavailable):
			r.log.Warn("Refreshing directory without lock", zap.Error(err))
		case err != nil:
			return err
		case !ok:
			r.log.Debug("Directory refresh already running elsewhere, skipping")
			return nil
		default:
			defer func() {
				if err := r.locker.Unlock(context.Background(), refreshLockKey); err != nil {
					r.log.Warn("Failed to release refresh lock", zap.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	n, err := r.refresher.Refresh(ctx)
	if err != nil {
		r.log.Error("Directory refresh failed", zap.Error(err))
		return err
	}

	r.log.Info("Directory refreshed",
		zap.Int("contacts", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Register 把刷新任务挂到 cron 上，错误已在 RunOnce 中记录
func (r *DirectoryRefresher) Register(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		_ = r.RunOnce(ctx)
	})
}

// NewCron 创建 cron：上一次未结束时跳过本次，并捕获 panic
func NewCron() *cron.Cron {
	l := cronLogger{log: logger.Component("cron")}
	return cron.New(cron.WithChain(
		cron.Recover(l),
		cron.SkipIfStillRunning(l),
	))
}

// cronLogger 把 cron 的日志转到 zap
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
