package dataset

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

// errInvalidJSON は、ボディが1つの完全なJSON文書ではないことを示します。
var errInvalidJSON = errors.New("不正なJSONです")

// Validate は body が1つの完全なJSON文書であるかを検証します。後続のゴミは許可しません。
func Validate(body []byte) error {
	if !json.Valid(body) {
		return errInvalidJSON
	}
	return nil
}

// Decode は1つのJSON文書を解釈します。数値は精度を保つため json.Number のまま保持します。
func Decode(body []byte) (any, error) {
	if err := Validate(body); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Format は raw を2スペースのインデント付きJSONに整形します。
// キーの順序と文字列リテラルは元の文書のまま保持され、末尾の改行は付きません。
func Format(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
