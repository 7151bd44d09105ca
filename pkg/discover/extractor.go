package discover

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// StageExtractURLs は、スクリプトからデータURLを抽出するステージ名です。
const StageExtractURLs = "extract-urls"

// dataURLPattern は const a="...json",b="...json",c="...json",d="...json" に一致します。
// 変数名は無視し、文字列リテラルの値だけを左から順に取り出します。
var dataURLPattern = regexp.MustCompile(
	`const\s+\w+\s*=\s*"([^"]+\.json)"` +
		strings.Repeat(`\s*,\s*\w+\s*=\s*"([^"]+\.json)"`, ExpectedDataURLCount-1),
)

// Extractor は、バンドルスクリプトから4つのデータファイルURLを抽出します。
type Extractor struct {
	fetcher Fetcher
	timeout time.Duration
	sink    runlog.Sink
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher, timeout time.Duration, sink runlog.Sink) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("discover.NewExtractor: Fetcher cannot be nil")
	}
	if sink == nil {
		sink = runlog.Discard{}
	}
	return &Extractor{
		fetcher: fetcher,
		timeout: timeout,
		sink:    sink,
	}, nil
}

// ExtractDataURLs はスクリプトを取得し、埋め込まれたデータファイルURLを返します。
func (e *Extractor) ExtractDataURLs(ctx context.Context, scriptURL string) ([]string, error) {
	runlog.Info(e.sink, StageExtractURLs, scriptURL, "スクリプトをダウンロードしています: %s", scriptURL)

	resp, err := e.fetcher.Get(ctx, scriptURL, e.timeout)
	if err != nil {
		runlog.Error(e.sink, StageExtractURLs, scriptURL, "スクリプトからのJSON URL抽出に失敗しました: %v", err)
		return nil, fmt.Errorf("スクリプトの取得に失敗しました: %w", err)
	}

	urls, err := ParseDataURLs(string(resp.Body))
	if err != nil {
		var discoveryErr *DiscoveryError
		if errors.As(err, &discoveryErr) {
			discoveryErr.URL = scriptURL
		}
		runlog.Error(e.sink, StageExtractURLs, scriptURL, "スクリプトからのJSON URL抽出に失敗しました: %v", err)
		return nil, err
	}

	runlog.Info(e.sink, StageExtractURLs, scriptURL, "%d件のJSONファイルURLを抽出しました: %v", len(urls), urls)
	return urls, nil
}

// ParseDataURLs は、スクリプト本文から4つのJSON URLを出現順に取り出します。
func ParseDataURLs(script string) ([]string, error) {
	match := dataURLPattern.FindStringSubmatch(script)
	if match == nil {
		return nil, &DiscoveryError{
			Stage: StageExtractURLs,
			Err:   ErrPatternNotFound,
		}
	}

	urls := make([]string, 0, ExpectedDataURLCount)
	urls = append(urls, match[1:]...)
	return urls, nil
}
