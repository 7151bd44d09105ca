package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-xyzrank-sync/internal/pipeline"
	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

func newDiscoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "現在のスクリプトURLとデータファイルURLを表示します (ダウンロードはしません)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.Build(a.cfg, runlog.New(a.logger), a.clientOptions...)
			if err != nil {
				return fmt.Errorf("パイプラインの初期化エラー: %w", err)
			}

			result := p.Discover(cmd.Context())
			if !result.Success {
				return fmt.Errorf("URLの特定に失敗しました (%s): %w", result.State, result.Err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "スクリプトURL: %s\n", result.ScriptURL)
			renderDataURLs(out, result.DataURLs)
			return nil
		},
	}
}
