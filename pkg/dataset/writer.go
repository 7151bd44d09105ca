package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// StageSave は、データファイルを保存するステージ名です。
const StageSave = "save"

// Writer は、解釈済みのデータを分類ラベル名のファイルに保存します。
type Writer struct {
	dir       string
	exportCSV bool
	sink      runlog.Sink
}

// WriterOption はWriterの設定を行うための関数型です。
type WriterOption func(*Writer)

// WithCSVExport は、JSONに加えてCSVも書き出すかどうかを設定します。
func WithCSVExport(enabled bool) WriterOption {
	return func(w *Writer) {
		w.exportCSV = enabled
	}
}

// NewWriter は、dir に保存するWriterを生成します。dir が空の場合はカレントディレクトリです。
func NewWriter(dir string, sink runlog.Sink, options ...WriterOption) *Writer {
	if dir == "" {
		dir = "."
	}
	if sink == nil {
		sink = runlog.Discard{}
	}
	w := &Writer{dir: dir, sink: sink}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Save は sourceURL を分類し、<label>.json として payload を整形して書き込みます。
// 書き込み済みのファイルパスとラベルを返します。
func (w *Writer) Save(payload json.RawMessage, sourceURL string) (path string, label string, err error) {
	label = Classify(sourceURL)
	path = filepath.Join(w.dir, label+".json")

	content, err := Format(payload)
	if err != nil {
		writeErr := &WriteError{Path: path, Err: fmt.Errorf("JSONの整形に失敗しました: %w", err)}
		runlog.Error(w.sink, StageSave, sourceURL, "%v", writeErr)
		return "", label, writeErr
	}

	if err := WriteFileAtomic(path, content); err != nil {
		runlog.Error(w.sink, StageSave, sourceURL, "%v", err)
		return "", label, err
	}
	runlog.Info(w.sink, StageSave, sourceURL, "JSONを保存しました: %s", path)

	if w.exportCSV {
		csvPath := filepath.Join(w.dir, label+".csv")
		if err := w.writeCSV(payload, csvPath); err != nil {
			runlog.Warn(w.sink, StageSave, sourceURL, "CSVの保存に失敗しました (%s): %v", label, err)
		} else {
			runlog.Info(w.sink, StageSave, sourceURL, "CSVを保存しました: %s", csvPath)
		}
	}

	return path, label, nil
}

func (w *Writer) writeCSV(payload json.RawMessage, csvPath string) error {
	value, err := Decode(payload)
	if err != nil {
		return err
	}
	return ExportCSV(value, csvPath)
}

// WriteFileAtomic は、同じディレクトリの一時ファイルに書き込んでから rename で置き換えます。
// 読み手が書きかけの内容を目にすることはありません。
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: cause}
	}

	if _, err := tmp.Write(content); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
