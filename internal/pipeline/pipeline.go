package pipeline

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/shouni/go-xyzrank-sync/pkg/discover"
	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
	"github.com/shouni/go-xyzrank-sync/pkg/types"
)

// State はパイプラインの進行状態です。
type State string

const (
	StateStart         State = "Start"
	StateResolveScript State = "ResolveScript"
	StateExtractURLs   State = "ExtractURLs"
	StateFetchAndSave  State = "FetchAndSave"
	StateDone          State = "Done"
	StateFailed        State = "Failed"
)

const stageRun = "run"

// ----------------------------------------------------------------------
// 依存性の定義
// ----------------------------------------------------------------------

// ScriptResolver は、トップページからバンドルスクリプトのURLを特定します。
type ScriptResolver interface {
	ResolveScriptURL(ctx context.Context) (string, error)
}

// URLExtractor は、バンドルスクリプトからデータファイルURLを抽出します。
type URLExtractor interface {
	ExtractDataURLs(ctx context.Context, scriptURL string) ([]string, error)
}

// DataFetcher は、データファイルを取得してJSON文書として検証します。
type DataFetcher interface {
	Fetch(ctx context.Context, dataURL string) (json.RawMessage, error)
}

// DataWriter は、検証済みのJSON文書を分類ラベル名のファイルに保存します。
type DataWriter interface {
	Save(payload json.RawMessage, sourceURL string) (path string, label string, err error)
}

// Result は一回の実行結果です。
type Result struct {
	Success   bool
	State     State
	ScriptURL string
	DataURLs  []string
	Files     []types.FileResult
	Entries   []runlog.Entry
	Err       error // 実行を中断させたエラー (部分的な失敗では nil)
}

// Pipeline は、URL探索から保存までの各ステージを順番に実行します。
type Pipeline struct {
	resolver  ScriptResolver
	extractor URLExtractor
	fetcher   DataFetcher
	writer    DataWriter
	log       *runlog.Log
}

// New は新しいPipelineを生成します。log が nil の場合は出力なしのログを使います。
func New(resolver ScriptResolver, extractor URLExtractor, fetcher DataFetcher, writer DataWriter, log *runlog.Log) *Pipeline {
	if log == nil {
		log = runlog.New(nil)
	}
	return &Pipeline{
		resolver:  resolver,
		extractor: extractor,
		fetcher:   fetcher,
		writer:    writer,
		log:       log,
	}
}

// Run は全ステージを実行します。
// 探索ステージの失敗は実行全体を中断し、個々のデータファイルの失敗は
// 他のファイルの処理を止めずに Success を false にします。
// 下流で発生したパニックも失敗として Result に変換され、呼び出し元には伝播しません。
func (p *Pipeline) Run(ctx context.Context) (result Result) {
	result.State = StateStart
	defer func() {
		if r := recover(); r != nil {
			runlog.Error(p.log, stageRun, "", "予期しないエラーにより処理を中断しました (%s): %v", result.State, r)
			result.Err = fmt.Errorf("panic (%s): %v", result.State, r)
			result.Success = false
			result.State = StateFailed
		}
		result.Entries = p.log.Entries()
	}()

	runlog.Info(p.log, stageRun, "", "XYZRankデータ取得処理を開始します")

	// 1. スクリプトURLの特定 ～ 2. データURLの抽出
	if err := p.discover(ctx, &result); err != nil {
		result.Err = err
		result.State = StateFailed
		return result
	}

	// 3. すべてのデータファイルを取得して保存
	result.State = StateFetchAndSave
	result.Success = true
	for _, dataURL := range result.DataURLs {
		file := p.fetchAndSave(ctx, dataURL)
		if !file.OK() {
			result.Success = false
		}
		result.Files = append(result.Files, file)
	}

	if result.Success {
		result.State = StateDone
		runlog.Info(p.log, stageRun, "", "すべてのJSONファイルの保存が完了しました")
	} else {
		result.State = StateFailed
		runlog.Warn(p.log, stageRun, "", "一部のJSONファイルの取得または保存に失敗しました")
	}
	return result
}

// Discover はスクリプトURLとデータURLの特定だけを行い、ファイルの取得・保存はしません。
func (p *Pipeline) Discover(ctx context.Context) (result Result) {
	result.State = StateStart
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic (%s): %v", result.State, r)
			result.Success = false
			result.State = StateFailed
		}
		result.Entries = p.log.Entries()
	}()

	if err := p.discover(ctx, &result); err != nil {
		result.Err = err
		result.State = StateFailed
		return result
	}
	result.Success = true
	result.State = StateDone
	return result
}

func (p *Pipeline) discover(ctx context.Context, result *Result) error {
	result.State = StateResolveScript
	scriptURL, err := p.resolver.ResolveScriptURL(ctx)
	if err != nil {
		runlog.Error(p.log, stageRun, "", "処理を中断します: スクリプトURLを取得できませんでした")
		return err
	}
	result.ScriptURL = scriptURL

	result.State = StateExtractURLs
	dataURLs, err := p.extractor.ExtractDataURLs(ctx, scriptURL)
	if err != nil {
		runlog.Error(p.log, stageRun, scriptURL, "処理を中断します: JSONファイルURLを完全には抽出できませんでした")
		return err
	}
	if len(dataURLs) != discover.ExpectedDataURLCount {
		err := &discover.CountMismatchError{Want: discover.ExpectedDataURLCount, Got: len(dataURLs)}
		runlog.Error(p.log, stageRun, scriptURL, "処理を中断します: %v", err)
		return err
	}
	result.DataURLs = dataURLs
	return nil
}

// fetchAndSave は1つのデータURLを取得して保存します。失敗はエラーとして結果に記録します。
// 取得・保存中のパニックもこのURLの失敗として扱い、残りのURLの処理は続行されます。
func (p *Pipeline) fetchAndSave(ctx context.Context, dataURL string) (file types.FileResult) {
	file.URL = dataURL
	defer func() {
		if r := recover(); r != nil {
			runlog.Error(p.log, stageRun, dataURL, "予期しないエラーが発生しました (%s): %v", dataURL, r)
			file.Path = ""
			file.Error = fmt.Errorf("panic (%s): %v", dataURL, r)
		}
	}()

	payload, err := p.fetcher.Fetch(ctx, dataURL)
	if err != nil {
		file.Error = err
		return file
	}

	path, label, err := p.writer.Save(payload, dataURL)
	file.Label = label
	if err != nil {
		file.Error = err
		return file
	}
	file.Path = path
	return file
}
