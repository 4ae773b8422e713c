package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"catalyst-trader/internal/model"
)

// KeyPrefix 去重键前缀
const KeyPrefix = "catalyst:seen:"

// Store 记录已经处理过的新闻条目，被标记的条目不会再次挂起
type Store interface {
	Seen(ctx context.Context, hash string) (bool, error)
	Save(ctx context.Context, hash string) error
	Close() error
}

// Hash 条目指纹：小写后的 url|title|主标的，没有 url 时用 id 代替
func Hash(item model.NewsItem) string {
	ref := strings.TrimSpace(item.URL)
	if ref == "" {
		ref = item.ID
	}
	parts := []string{ref, strings.TrimSpace(item.Title), item.PrimarySymbol()}
	sum := sha1.Sum([]byte(strings.ToLower(strings.Join(parts, "|"))))
	return hex.EncodeToString(sum[:])
}
