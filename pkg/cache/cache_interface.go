package cache

import (
	"context"
	"time"
)

// Cache interface định nghĩa contract cho cache layer
type Cache interface {
	// SetNX chỉ set khi key chưa tồn tại.
	// - true: key vừa được tạo (caller giữ guard)
	// - false: key đã tồn tại
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Delete xóa các keys khỏi cache
	Delete(ctx context.Context, keys ...string) error

	// Ping kiểm tra connection
	Ping(ctx context.Context) error
}
