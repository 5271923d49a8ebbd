package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestContext(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, RequestID(ctx))
		assert.Equal(t, Client{}, ClientOf(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("values round trip", func(t *testing.T) {
		pinned := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		ctx := WithRequestID(context.Background(), "req-1")
		ctx = WithTime(ctx, pinned)
		ctx = WithClientMetadata(ctx, "10.0.0.8", "Mozilla/5.0", "Chrome on Android")

		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, pinned, Now(ctx))
		assert.Equal(t, "10.0.0.8", ClientIP(ctx))
		assert.Equal(t, "Mozilla/5.0", UserAgent(ctx))
		assert.Equal(t, "Chrome on Android", Terminal(ctx))
	})
}
