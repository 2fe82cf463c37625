package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 10 * time.Second
	lockRetryWait = 50 * time.Millisecond
	lockMaxWait   = 5 * time.Second
)

// releaseScript 原子的比对并删除：TTL过期后锁被他人持有时不得误删
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// tenantLocker 租户级咨询锁：包住"读最大值再插入"类操作，
// 避免两个并发请求拿到同一个单号/序列号后缀。
// rdb为空（单机测试环境）时退化为不加锁
type tenantLocker struct {
	rdb *redis.Client
}

// Acquire 获取锁，返回释放函数；超时未获取到则返回冲突错误
func (l *tenantLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.rdb == nil {
		return func() {}, nil
	}

	token := uuid.New().String()
	deadline := time.Now().Add(lockMaxWait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: 锁 %s 获取超时", ErrConflict, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryWait):
		}
	}

	release := func() {
		// 只释放自己持有的锁
		releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
	}
	return release, nil
}

func orderNumberLockKey(companyID string) string {
	return "wms:lock:order-number:" + companyID
}

func loadoutLockKey(companyID string) string {
	return "wms:lock:loadout:" + companyID
}
