package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-xyzrank-sync/internal/pipeline"
	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// errSyncFailed は、一部または全部のデータファイルを保存できなかったことを示します。
var errSyncFailed = errors.New("データの取得処理に失敗しました")

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "最新のランキングJSONファイルをすべてダウンロードして保存します",
		Long:  `トップページからスクリプトURLを特定し、スクリプト内の4つのJSONファイルをダウンロードして output-dir に保存します。1つでも失敗した場合は終了コード1で終了します。`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// 1. 依存性の初期化
			log := runlog.New(a.logger)
			p, err := pipeline.Build(a.cfg, log, a.clientOptions...)
			if err != nil {
				return fmt.Errorf("パイプラインの初期化エラー: %w", err)
			}

			// 2. メインロジックの実行
			result := p.Run(cmd.Context())

			// 3. 結果の出力
			if result.ScriptURL != "" {
				fmt.Fprintf(out, "スクリプトURL: %s\n", result.ScriptURL)
			}
			if len(result.Files) > 0 {
				renderFiles(out, result.Files)
			}

			// 4. ログファイルの保存 (任意)
			if a.cfg.LogFile != "" {
				if err := log.WriteFile(a.cfg.LogFile); err != nil {
					a.logger.Warnf("ログファイルの保存に失敗しました: %v", err)
				}
			}

			if result.Success {
				fmt.Fprintln(out, "すべてのJSONファイルのダウンロードが完了しました！")
				return nil
			}

			if a.cfg.LogFile != "" {
				fmt.Fprintf(out, "処理中にエラーが発生しました。詳細はログを確認してください: %s\n", a.cfg.LogFile)
			} else {
				fmt.Fprintln(out, "処理中にエラーが発生しました。詳細はログを確認してください。")
			}
			if result.Err != nil {
				return fmt.Errorf("%w (%s): %w", errSyncFailed, result.State, result.Err)
			}
			return errSyncFailed
		},
	}
}
