package runlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shouni/go-utils/iohandler"
	"github.com/sirupsen/logrus"
)

// TimestampLayout は、ログ行の先頭に付与するタイムスタンプの書式です。
const TimestampLayout = "2006-01-02 15:04:05"

// ----------------------------------------------------------------------
// ログエントリとシンク
// ----------------------------------------------------------------------

// Entry は、一回の実行中に記録されるログ1件を表します。
// Stage と URL は診断用の任意項目です。
type Entry struct {
	Time    time.Time
	Level   logrus.Level
	Stage   string
	URL     string
	Message string
}

// String は "[YYYY-MM-DD HH:MM:SS] message" 形式の1行を返します。
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(TimestampLayout), e.Message)
}

// Sink は、ログエントリを追記する唯一の機能を持つインターフェースです。
// 各コンポーネントはこの抽象にのみ依存します。
type Sink interface {
	Record(entry Entry)
}

// ----------------------------------------------------------------------
// Log (メモリ上の追記専用ログ)
// ----------------------------------------------------------------------

// Log は Sink の標準実装です。エントリをメモリに保持し、
// 同時に logrus.Logger へミラー出力します。
type Log struct {
	entries []Entry
	logger  *logrus.Logger
	now     func() time.Time
}

// Option は Log の設定を行うための関数型です。
type Option func(*Log)

// WithClock はタイムスタンプ取得関数を差し替えます (テスト用)。
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New は新しい Log を生成します。logger が nil の場合はミラー出力を行いません。
func New(logger *logrus.Logger, options ...Option) *Log {
	l := &Log{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Record はエントリを追記します。Time がゼロ値の場合は現在時刻を付与します。
func (l *Log) Record(entry Entry) {
	if entry.Time.IsZero() {
		entry.Time = l.now()
	}
	l.entries = append(l.entries, entry)

	if l.logger == nil {
		return
	}
	fields := logrus.Fields{}
	if entry.Stage != "" {
		fields["stage"] = entry.Stage
	}
	if entry.URL != "" {
		fields["url"] = entry.URL
	}
	l.logger.WithTime(entry.Time).WithFields(fields).Log(entry.Level, entry.Message)
}

// Entries は記録済みエントリのコピーを記録順に返します。
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines は各エントリを String() で整形した行を返します。
func (l *Log) Lines() []string {
	lines := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		lines = append(lines, e.String())
	}
	return lines
}

// WriteFile はログ全体をテキストファイルとして書き出します。既存ファイルは上書きされます。
// path が空の場合は標準出力に書き出します。
func (l *Log) WriteFile(path string) error {
	content := strings.Join(l.Lines(), "\n")
	if err := iohandler.WriteOutputString(path, content); err != nil {
		return fmt.Errorf("ログファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	return nil
}

// ----------------------------------------------------------------------
// ヘルパー関数
// ----------------------------------------------------------------------

// Info は情報レベルのエントリを sink に記録します。
func Info(sink Sink, stage, url, format string, args ...any) {
	record(sink, logrus.InfoLevel, stage, url, format, args...)
}

// Warn は警告レベルのエントリを sink に記録します。
func Warn(sink Sink, stage, url, format string, args ...any) {
	record(sink, logrus.WarnLevel, stage, url, format, args...)
}

// Error はエラーレベルのエントリを sink に記録します。
func Error(sink Sink, stage, url, format string, args ...any) {
	record(sink, logrus.ErrorLevel, stage, url, format, args...)
}

func record(sink Sink, level logrus.Level, stage, url, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Record(Entry{
		Level:   level,
		Stage:   stage,
		URL:     url,
		Message: fmt.Sprintf(format, args...),
	})
}

// Discard は何も記録しない Sink です。
type Discard struct{}

func (Discard) Record(Entry) {}
