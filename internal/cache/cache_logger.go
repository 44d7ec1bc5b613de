package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateServerCache drops all cached views of a course server after a
// membership mutation.
func InvalidateServerCache(ctx context.Context, cm *CacheManager, serverID, joinCode string) {
	SafeDelete(ctx, cm.Server,
		fmt.Sprintf("id:%s", serverID),
		fmt.Sprintf("code:%s", joinCode))

	SafeInvalidatePattern(ctx, cm.Server, "user:*")
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("code:%s", joinCode))
}
