package discover

import (
	"context"
	"time"

	"github.com/shouni/go-xyzrank-sync/pkg/httpclient"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、URLのレスポンスを取得する機能のインターフェースを定義します。
// Resolver と Extractor は、この抽象に依存します。
type Fetcher interface {
	Get(ctx context.Context, url string, timeout time.Duration) (*httpclient.Response, error)
}
