package discover

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// StageResolveScript は、トップページからスクリプトURLを探すステージ名です。
const StageResolveScript = "resolve-script"

var (
	// absoluteScriptPattern は http(s)://<host>/assets/index.<hash>.js 形式の src に一致します。
	absoluteScriptPattern = regexp.MustCompile(`^https?://[^"']+?/assets/index\.[a-f0-9]+\.js$`)
	// relativeScriptPattern は /assets/index.<hash>.js 形式の src に一致します。
	relativeScriptPattern = regexp.MustCompile(`^/assets/index\.[a-f0-9]+\.js$`)
)

// Resolver は、トップページから現在のバンドルスクリプトのURLを特定します。
type Resolver struct {
	fetcher Fetcher
	baseURL *url.URL
	timeout time.Duration
	sink    runlog.Sink
}

// NewResolver は、新しいResolverのインスタンスを生成します。
func NewResolver(fetcher Fetcher, baseURL string, timeout time.Duration, sink runlog.Sink) (*Resolver, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("discover.NewResolver: Fetcher cannot be nil")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ベースURLのパースエラー: %w", err)
	}
	if sink == nil {
		sink = runlog.Discard{}
	}
	return &Resolver{
		fetcher: fetcher,
		baseURL: base,
		timeout: timeout,
		sink:    sink,
	}, nil
}

// ResolveScriptURL はトップページを取得し、スクリプトの絶対URLを返します。
func (r *Resolver) ResolveScriptURL(ctx context.Context) (string, error) {
	pageURL := r.baseURL.String()
	runlog.Info(r.sink, StageResolveScript, pageURL, "トップページのHTMLを取得しています...")

	// 1. HTMLの取得 (通信の責務)
	resp, err := r.fetcher.Get(ctx, pageURL, r.timeout)
	if err != nil {
		runlog.Error(r.sink, StageResolveScript, pageURL, "スクリプトURLの取得に失敗しました: %v", err)
		return "", fmt.Errorf("トップページの取得に失敗しました: %w", err)
	}

	// 2. 文字コードをUTF-8に揃えてから解析
	reader, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType())
	if err != nil {
		runlog.Error(r.sink, StageResolveScript, pageURL, "スクリプトURLの取得に失敗しました: %v", err)
		return "", fmt.Errorf("HTMLの文字コード変換に失敗しました: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		runlog.Error(r.sink, StageResolveScript, pageURL, "スクリプトURLの取得に失敗しました: %v", err)
		return "", fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	// 3. script タグの src を探索
	scriptURL, relative, err := FindScriptURL(doc, r.baseURL)
	if err != nil {
		runlog.Error(r.sink, StageResolveScript, pageURL, "スクリプトURLの取得に失敗しました: %v", err)
		return "", err
	}

	if relative {
		runlog.Info(r.sink, StageResolveScript, scriptURL, "スクリプトを発見しました (相対パス): %s", scriptURL)
	} else {
		runlog.Info(r.sink, StageResolveScript, scriptURL, "スクリプトを発見しました: %s", scriptURL)
	}
	return scriptURL, nil
}

// FindScriptURL は、文書内の <script src> から現在のバンドルスクリプトを探します。
// 絶対URL形式を文書全体から先に探し、見つからなければルート相対形式を base で解決します。
// いずれの形式でも、文書順で最初に一致したものだけを使います。
func FindScriptURL(doc *goquery.Document, base *url.URL) (scriptURL string, relative bool, err error) {
	sources := scriptSources(doc)

	for _, src := range sources {
		if absoluteScriptPattern.MatchString(src) {
			return src, false, nil
		}
	}

	for _, src := range sources {
		if relativeScriptPattern.MatchString(src) {
			ref, parseErr := url.Parse(src)
			if parseErr != nil {
				continue
			}
			return base.ResolveReference(ref).String(), true, nil
		}
	}

	return "", false, &DiscoveryError{
		Stage: StageResolveScript,
		URL:   base.String(),
		Err:   ErrScriptURLNotFound,
	}
}

// scriptSources は script タグの src 属性を文書順に返します。
func scriptSources(doc *goquery.Document) []string {
	var sources []string
	doc.Find("script[src]").Each(func(i int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			sources = append(sources, src)
		}
	})
	return sources
}
