package discover

import (
	"errors"
	"fmt"
)

// ExpectedDataURLCount は、スクリプトから抽出されるべきデータファイルURLの数です。
const ExpectedDataURLCount = 4

var (
	// ErrScriptURLNotFound は、トップページにバンドルスクリプトのURLが見つからないことを示します。
	ErrScriptURLNotFound = errors.New("script URL not found")
	// ErrPatternNotFound は、スクリプト内に4つのJSON URLを宣言する const 文が見つからないことを示します。
	ErrPatternNotFound = errors.New("pattern not found")
)

// DiscoveryError は、取得したHTMLまたはスクリプトに期待するパターンがなかったことを示します。
type DiscoveryError struct {
	Stage string
	URL   string
	Err   error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("URL探索エラー (%s, URL: %s): %v", e.Stage, e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// CountMismatchError は、抽出されたデータURLの数が期待値と異なることを示します。
type CountMismatchError struct {
	Want int
	Got  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("データURLの数が一致しません: 期待値 %d, 実際 %d", e.Want, e.Got)
}

// IsDiscoveryError は与えられたエラーが DiscoveryError であるかを判断します。
func IsDiscoveryError(err error) bool {
	var discoveryErr *DiscoveryError
	return errors.As(err, &discoveryErr)
}
