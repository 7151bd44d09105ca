package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// utf8BOM は、表計算ソフトがUTF-8として開けるようCSVの先頭に付与します。
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV は payload を表形式に展開してCSVとして書き出します。
// オブジェクトの配列は1要素1行、単一のオブジェクトは1行になります。
// 列は全レコードのキーの和集合を辞書順に並べたもので、入れ子の値はJSON文字列として書き込みます。
func ExportCSV(payload any, path string) error {
	records, err := toRecords(payload)
	if err != nil {
		return err
	}

	columns := collectColumns(records)

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			v, ok := rec[col]
			if !ok {
				continue
			}
			cell, err := formatCell(v)
			if err != nil {
				return err
			}
			row[i] = cell
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return WriteFileAtomic(path, buf.Bytes())
}

func toRecords(payload any) ([]map[string]any, error) {
	switch v := payload.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		records := make([]map[string]any, 0, len(v))
		for i, item := range v {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("CSVに変換できない要素です (index %d: %T)", i, item)
			}
			records = append(records, rec)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("サポートされていないデータ型です: %T", payload)
	}
}

// collectColumns は全レコードのキーを重複なく集め、辞書順に並べます。
func collectColumns(records []map[string]any) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

func formatCell(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
