// Package cache 进程内带过期时间的键值存储
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Store 键值存储接口
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration) bool
	Delete(key string)
}

// Options ristretto 参数
type Options struct {
	NumCounters int64
	MaxCost     int64
}

// DefaultOptions 约 10 万个计数键
func DefaultOptions() Options {
	return Options{NumCounters: 1e6, MaxCost: 1e5}
}

// Memory 基于 ristretto 的实现，每个条目 cost 为 1
type Memory struct {
	cache *ristretto.Cache
}

// NewMemory 创建内存存储
func NewMemory(opts Options) (*Memory, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.NumCounters,
		MaxCost:     opts.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("创建缓存失败: %w", err)
	}
	return &Memory{cache: c}, nil
}

// Get 读取
func (m *Memory) Get(key string) (any, bool) {
	return m.cache.Get(key)
}

// Set 写入并等待生效，ttl <= 0 表示不过期
func (m *Memory) Set(key string, value any, ttl time.Duration) bool {
	var ok bool
	if ttl > 0 {
		ok = m.cache.SetWithTTL(key, value, 1, ttl)
	} else {
		ok = m.cache.Set(key, value, 1)
	}
	m.cache.Wait()
	return ok
}

// Delete 删除
func (m *Memory) Delete(key string) {
	m.cache.Del(key)
}

// Close 停止后台协程
func (m *Memory) Close() {
	m.cache.Close()
}
