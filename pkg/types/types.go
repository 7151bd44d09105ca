package types

// FileResult は、1つのデータファイルURLについての取得・保存結果を保持します。
// これは、Pipelineの出力、CLIのサマリー表示の入力として利用されます。
type FileResult struct {
	URL   string // 処理対象のデータファイルURL
	Label string // 分類ラベル (保存ファイル名の元)
	Path  string // 保存先のパス (失敗時は空)
	Error error  // 処理中に発生したエラー
}

// OK は、取得と保存の両方に成功したかどうかを返します。
func (r FileResult) OK() bool {
	return r.Error == nil && r.Path != ""
}
