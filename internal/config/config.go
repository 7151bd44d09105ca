package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 設定キーとデフォルト値
const (
	KeyBaseURL             = "base_url"
	KeyRequestTimeoutEntry = "request_timeout_entry"
	KeyRequestTimeoutAsset = "request_timeout_asset"
	KeyOutputDir           = "output_dir"
	KeyLogFile             = "log_file"
	KeyExportCSV           = "export_csv"
	KeyUserAgent           = "user_agent"
	KeyVerbose             = "verbose"

	DefaultBaseURL             = "https://xyzrank.com"
	DefaultRequestTimeoutEntry = 15 // 秒
	DefaultRequestTimeoutAsset = 20 // 秒
	DefaultOutputDir           = "."

	// EnvPrefix は環境変数の接頭辞です (例: XYZRANK_BASE_URL)。
	EnvPrefix = "XYZRANK"
	// ConfigName は任意の設定ファイル名 (拡張子なし) です。
	ConfigName = "xyzrank"
)

// Config はアプリケーションの設定を保持します。
type Config struct {
	BaseURL             string `mapstructure:"base_url"`
	RequestTimeoutEntry int    `mapstructure:"request_timeout_entry"`
	RequestTimeoutAsset int    `mapstructure:"request_timeout_asset"`
	OutputDir           string `mapstructure:"output_dir"`
	LogFile             string `mapstructure:"log_file"`
	ExportCSV           bool   `mapstructure:"export_csv"`
	UserAgent           string `mapstructure:"user_agent"`
	Verbose             bool   `mapstructure:"verbose"`
}

// EntryTimeout はトップページ取得のタイムアウトを返します。
func (c *Config) EntryTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutEntry) * time.Second
}

// AssetTimeout はスクリプトとデータファイル取得のタイムアウトを返します。
func (c *Config) AssetTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutAsset) * time.Second
}

// SetDefaults は viper にデフォルト値を登録します。
// Unmarshal と AutomaticEnv が全キーを認識できるよう、すべてのキーを登録します。
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyRequestTimeoutEntry, DefaultRequestTimeoutEntry)
	v.SetDefault(KeyRequestTimeoutAsset, DefaultRequestTimeoutAsset)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyExportCSV, false)
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyVerbose, false)
}

// LoadDotEnv は、カレントディレクトリの .env を環境変数に読み込みます。
// ファイルが存在しない場合はエラーになりません。
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env ファイルの読み込みに失敗しました: %w", err)
	}
	return nil
}

// Load は設定ファイル、環境変数、フラグ (v にバインド済み) の順に設定を読み込みます。
// 後から読み込んだものほど優先されます (フラグが最優先)。
// configFile が空の場合は、カレントディレクトリの xyzrank.* があれば読み込みます。
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", configFile, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定のデコードに失敗しました: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値を検証し、ベースURLのスキームを補完します。
func (c *Config) Validate() error {
	baseURL, err := EnsureScheme(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return fmt.Errorf("%s が不正です: %w", KeyBaseURL, err)
	}
	c.BaseURL = baseURL

	if c.RequestTimeoutEntry <= 0 {
		return fmt.Errorf("%s は正の値である必要があります: %d", KeyRequestTimeoutEntry, c.RequestTimeoutEntry)
	}
	if c.RequestTimeoutAsset <= 0 {
		return fmt.Errorf("%s は正の値である必要があります: %d", KeyRequestTimeoutAsset, c.RequestTimeoutAsset)
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	return nil
}

// EnsureScheme は、URLのスキームが存在しない場合に https:// を補完します。
// 既にスキームが存在する場合は、それが http または https であるかをチェックします。
func EnsureScheme(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("URLが空です")
	}

	// 1. まず現在のURLをパース
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URLのパースエラー: %w", err)
	}

	// 2. スキームが既に存在する場合のチェック
	if parsedURL.Scheme != "" {
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return "", fmt.Errorf("無効なURLスキームです。httpまたはhttpsを指定してください: %s", rawURL)
		}
		if parsedURL.Host == "" {
			return "", fmt.Errorf("ホストが指定されていません: %s", rawURL)
		}
		return rawURL, nil
	}

	// 3. スキームがない場合、HTTPSをデフォルトとして付与
	return "https://" + rawURL, nil
}
