package dataset

import (
	"errors"
	"fmt"
)

// ParseError は、レスポンスボディがJSONとして解釈できなかったことを示します。
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSONのパースに失敗しました (URL: %s): %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WriteError は、ローカルファイルへの書き込みに失敗したことを示します。
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("ファイルの書き込みに失敗しました (%s): %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsParseError は与えられたエラーが ParseError であるかを判断します。
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsWriteError は与えられたエラーが WriteError であるかを判断します。
func IsWriteError(err error) bool {
	var writeErr *WriteError
	return errors.As(err, &writeErr)
}
