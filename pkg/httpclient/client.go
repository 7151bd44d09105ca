package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// HTTPクライアント関連の定数
	DefaultEntryTimeout = 15 * time.Second
	DefaultAssetTimeout = 20 * time.Second
	MaxBodySize         = int64(32 * 1024 * 1024) // 32MB: レスポンスボディの最大読み込みサイズ

	// サイトからのブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// エラーメッセージに含めるボディの最大長
	maxErrorBodyLength = 1024
)

// ----------------------------------------------------------------------
// エラー型
// ----------------------------------------------------------------------

// StatusError は 2xx 以外のステータスコードを示すエラー型です。
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("HTTPステータスエラー: ステータスコード %d (URL: %s), ボディなし", e.StatusCode, e.URL)
	}
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}
	return fmt.Sprintf("HTTPステータスエラー: ステータスコード %d (URL: %s), ボディ: %s", e.StatusCode, e.URL, body)
}

// RequestError は接続失敗やタイムアウトなど、レスポンスを得られなかったエラーを示します。
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTPリクエストに失敗しました (ネットワーク/接続エラー, URL: %s): %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsStatusError は与えられたエラーが StatusError であるかを判断します。
func IsStatusError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// IsNetworkError は、接続エラーとステータスエラーのどちらかであるかを判断します。
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var reqErr *RequestError
	return errors.As(err, &reqErr) || IsStatusError(err)
}

// ----------------------------------------------------------------------
// クライアント
// ----------------------------------------------------------------------

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースです。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response は、読み込み済みのレスポンスボディとヘッダーを保持します。
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType は Content-Type ヘッダーの値を返します。
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Client は、すべてのリクエストに共通ヘッダーを付与してGETを実行します。
// リトライは行いません。
type Client struct {
	httpClient Doer
	headers    http.Header
}

// ClientOption はClientの設定を行うための関数型です。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithUserAgent は User-Agent ヘッダーを上書きします。空文字列の場合は何もしません。
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.headers.Set("User-Agent", userAgent)
		}
	}
}

// WithHeader は任意の共通ヘッダーを設定します。
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// New は新しいClientを生成します。referer は全リクエストの Referer ヘッダーになります。
// タイムアウトはリクエストごとに Get の引数で指定します。
func New(referer string, options ...ClientOption) *Client {
	headers := make(http.Header)
	headers.Set("User-Agent", UserAgent)
	if referer != "" {
		headers.Set("Referer", referer)
	}

	c := &Client{
		httpClient: &http.Client{},
		headers:    headers,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Headers は共通ヘッダーのコピーを返します。
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

// Get は rawURL にGETリクエストを送り、ボディを読み込んだレスポンスを返します。
// timeout が正の値の場合、ボディの読み込みまでを含めた期限として適用されます。
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)}
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if err := checkResponse(rawURL, resp); err != nil {
		return nil, err
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}

	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// checkResponse は 2xx 以外のステータスコードを StatusError に変換します。
// ボディは読み込みますが、閉じる責務は呼び出し元にあります。
func checkResponse(rawURL string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength+1))
	return &StatusError{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)
	}
	if int64(len(body)) > MaxBodySize {
		return nil, fmt.Errorf("レスポンスボディが最大サイズ (%dバイト) を超えました", MaxBodySize)
	}
	return body, nil
}
