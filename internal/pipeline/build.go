package pipeline

import (
	"fmt"

	"github.com/shouni/go-xyzrank-sync/internal/config"
	"github.com/shouni/go-xyzrank-sync/pkg/dataset"
	"github.com/shouni/go-xyzrank-sync/pkg/discover"
	"github.com/shouni/go-xyzrank-sync/pkg/httpclient"
	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// Build は設定から各コンポーネントを組み立て、Pipelineを返します。
// 追加の ClientOption はテストで Doer を差し替えるために使います。
func Build(cfg *config.Config, log *runlog.Log, options ...httpclient.ClientOption) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline.Build: Config cannot be nil")
	}
	if log == nil {
		log = runlog.New(nil)
	}

	// 1. 共通ヘッダー付きのHTTPクライアントを初期化 (依存性の初期化)
	clientOptions := append([]httpclient.ClientOption{httpclient.WithUserAgent(cfg.UserAgent)}, options...)
	client := httpclient.New(cfg.BaseURL, clientOptions...)

	// 2. 各ステージを初期化 (DI)
	resolver, err := discover.NewResolver(client, cfg.BaseURL, cfg.EntryTimeout(), log)
	if err != nil {
		return nil, fmt.Errorf("Resolverの初期化エラー: %w", err)
	}
	extractor, err := discover.NewExtractor(client, cfg.AssetTimeout(), log)
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}
	fetcher, err := dataset.NewFetcher(client, cfg.AssetTimeout(), log)
	if err != nil {
		return nil, fmt.Errorf("Fetcherの初期化エラー: %w", err)
	}
	writer := dataset.NewWriter(cfg.OutputDir, log, dataset.WithCSVExport(cfg.ExportCSV))

	return New(resolver, extractor, fetcher, writer, log), nil
}
