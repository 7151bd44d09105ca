package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/shouni/go-xyzrank-sync/pkg/dataset"
	"github.com/shouni/go-xyzrank-sync/pkg/types"
)

// renderFiles は、データファイルごとの保存結果を表形式で出力します。
func renderFiles(w io.Writer, files []types.FileResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Label", "URL", "Result"})

	for i, f := range files {
		label := f.Label
		if label == "" {
			label = dataset.Classify(f.URL)
		}
		status := "✅ " + f.Path
		switch {
		case f.Error != nil:
			status = "❌ " + f.Error.Error()
		case !f.OK():
			status = "❌ 保存先が不明です"
		}
		t.AppendRow(table.Row{i + 1, label, f.URL, status})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// renderDataURLs は、データファイルURLと保存時の分類名を表形式で出力します。
func renderDataURLs(w io.Writer, urls []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Label", "URL"})

	for i, u := range urls {
		t.AppendRow(table.Row{i + 1, dataset.Classify(u), u})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
