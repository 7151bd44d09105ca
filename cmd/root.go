package cmd

import (
	"fmt"
	"os"

	clibase "github.com/shouni/go-cli-base"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shouni/go-xyzrank-sync/internal/config"
	"github.com/shouni/go-xyzrank-sync/pkg/httpclient"
)

const appName = "xyzrank-sync"

// app はコマンド間で共有する状態を保持します。
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *logrus.Logger

	// clientOptions は HTTP クライアントに追加で渡すオプションです (テストで Doer を差し替えるために使います)。
	clientOptions []httpclient.ClientOption
}

// flagBindings はフラグ名と設定キーの対応です。
var flagBindings = map[string]string{
	"base-url":      config.KeyBaseURL,
	"entry-timeout": config.KeyRequestTimeoutEntry,
	"asset-timeout": config.KeyRequestTimeoutAsset,
	"output-dir":    config.KeyOutputDir,
	"log-file":      config.KeyLogFile,
	"csv":           config.KeyExportCSV,
	"user-agent":    config.KeyUserAgent,
	"verbose":       config.KeyVerbose, // clibase が定義するフラグ
}

// newRootCmd はルートコマンドとサブコマンドを組み立てます。
// --verbose (-V) と --config (-C) は clibase が定義し、clibase.Flags から参照します。
func newRootCmd(a *app) *cobra.Command {
	rootCmd := clibase.NewRootCmd(appName, addAppPersistentFlags(a), initAppPreRunE(a))
	rootCmd.Short = "XYZRankのポッドキャストランキングデータを取得して保存します"
	rootCmd.Long = `xyzrank.com のトップページから現在のバンドルスクリプトを特定し、
スクリプトに埋め込まれた4つのJSONデータファイルをダウンロードして
分類名 (full, new_podcasts, hot_episodes, hot_episodes_new) のファイルとして保存します。`
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newSyncCmd(a), newDiscoverCmd(a))
	return rootCmd
}

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグを追加し、viper の設定キーに結び付けます。
func addAppPersistentFlags(a *app) clibase.CustomFlagFunc {
	return func(rootCmd *cobra.Command) {
		flags := rootCmd.PersistentFlags()
		addPersistentFlags(flags)
		if err := bindFlags(a.v, flags); err != nil {
			// フラグ定義とバインド表の不整合はプログラムの誤り
			panic(err)
		}
	}
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
func initAppPreRunE(a *app) clibase.CustomPreRunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		// 1. .env の読み込み (失敗してもロガー生成後に警告するだけ)
		envErr := config.LoadDotEnv()

		// 2. 設定の読み込み (--config が指定されていればそのファイルを使う)
		cfg, err := config.Load(a.v, clibase.Flags.ConfigFile)
		if err != nil {
			return err
		}
		a.cfg = cfg

		// 3. ロガーの初期化
		a.logger = newLogger(cmd, cfg.Verbose)
		if envErr != nil {
			a.logger.Warnf("警告: %v", envErr)
		}
		a.logger.Debugf("設定を読み込みました: %+v", *cfg)
		return nil
	}
}

// addPersistentFlags は、全サブコマンド共通のフラグを追加します。
func addPersistentFlags(flags *pflag.FlagSet) {
	flags.String("base-url", config.DefaultBaseURL, "スキャン対象のサイトルートURL")
	flags.Int("entry-timeout", config.DefaultRequestTimeoutEntry, "トップページ取得のタイムアウト時間（秒）")
	flags.Int("asset-timeout", config.DefaultRequestTimeoutAsset, "スクリプトとJSONファイル取得のタイムアウト時間（秒）")
	flags.StringP("output-dir", "o", config.DefaultOutputDir, "JSONファイルの保存先ディレクトリ")
	flags.String("log-file", "", "実行ログを書き出すファイルパス (空の場合は書き出さない)")
	flags.Bool("csv", false, "JSONに加えてCSVファイルも書き出す")
	flags.String("user-agent", "", "User-Agent ヘッダーを上書きする")
}

// bindFlags は、フラグを viper の設定キーに結び付けます。
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("フラグが定義されていません: --%s", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("フラグのバインドに失敗しました (--%s): %w", name, err)
		}
	}
	return nil
}

// newLogger は、コマンドの標準エラー出力に書き込む logrus ロガーを生成します。
func newLogger(cmd *cobra.Command, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行します。失敗した場合は終了コード1で終了します。
func Execute() {
	rootCmd := newRootCmd(&app{v: viper.New()})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}
