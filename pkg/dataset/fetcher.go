package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shouni/go-xyzrank-sync/pkg/httpclient"
	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// StageFetch は、データファイルを取得するステージ名です。
const StageFetch = "fetch"

// jsonContentType は、データファイルに期待する Content-Type です。
const jsonContentType = "application/json"

// Getter は、URLのレスポンスを取得する機能のインターフェースを定義します。
type Getter interface {
	Get(ctx context.Context, url string, timeout time.Duration) (*httpclient.Response, error)
}

// Fetcher は、データファイルを取得してJSONとして解釈します。
type Fetcher struct {
	client  Getter
	timeout time.Duration
	sink    runlog.Sink
}

// NewFetcher は、新しいFetcherのインスタンスを生成します。
func NewFetcher(client Getter, timeout time.Duration, sink runlog.Sink) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("dataset.NewFetcher: Getter cannot be nil")
	}
	if sink == nil {
		sink = runlog.Discard{}
	}
	return &Fetcher{client: client, timeout: timeout, sink: sink}, nil
}

// Fetch は dataURL を取得し、検証済みのJSON文書をそのまま返します。
// Content-Type が application/json でない場合は警告を記録するだけで処理を続けます。
func (f *Fetcher) Fetch(ctx context.Context, dataURL string) (json.RawMessage, error) {
	runlog.Info(f.sink, StageFetch, dataURL, "JSONファイルをダウンロードしています: %s", dataURL)

	resp, err := f.client.Get(ctx, dataURL, f.timeout)
	if err != nil {
		runlog.Error(f.sink, StageFetch, dataURL, "JSONデータのダウンロードに失敗しました (%s): %v", dataURL, err)
		return nil, err
	}

	if !strings.Contains(resp.ContentType(), jsonContentType) {
		runlog.Warn(f.sink, StageFetch, dataURL, "警告: %s の Content-Type が application/json ではありません (%q)", dataURL, resp.ContentType())
	}

	if err := Validate(resp.Body); err != nil {
		parseErr := &ParseError{URL: dataURL, Err: err}
		runlog.Error(f.sink, StageFetch, dataURL, "JSONデータのダウンロードに失敗しました (%s): %v", dataURL, parseErr)
		return nil, parseErr
	}

	runlog.Info(f.sink, StageFetch, dataURL, "JSONファイルのダウンロードに成功しました: %s", dataURL)
	return json.RawMessage(resp.Body), nil
}
