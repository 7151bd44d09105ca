package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-xyzrank-sync/pkg/httpclient"
)

// stubDoer は URL ごとに固定のボディを返します。未登録のURLは404です。
type stubDoer map[string]string

func (d stubDoer) Do(req *http.Request) (*http.Response, error) {
	body, ok := d[req.URL.String()]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	header := make(http.Header)
	if strings.HasSuffix(req.URL.Path, ".json") {
		header.Set("Content-Type", "application/json")
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func siteStub() stubDoer {
	return stubDoer{
		"https://xyzrank.com":                          `<html><head><script src="/assets/index.deadbeef.js"></script></head></html>`,
		"https://xyzrank.com/assets/index.deadbeef.js": `const a="https://cdn.test/full.json",b="https://cdn.test/new-podcasts.json",c="https://cdn.test/hot-episodes.json",d="https://cdn.test/hot-episodes-new.json";`,
		"https://cdn.test/full.json":                   `[{"rank":1}]`,
		"https://cdn.test/new-podcasts.json":           `[{"rank":2}]`,
		"https://cdn.test/hot-episodes.json":           `[{"rank":3}]`,
		"https://cdn.test/hot-episodes-new.json":       `[{"rank":4}]`,
	}
}

func execute(t *testing.T, doer httpclient.Doer, args ...string) (string, error) {
	t.Helper()
	a := &app{
		v:             viper.New(),
		clientOptions: []httpclient.ClientOption{httpclient.WithHTTPClient(doer)},
	}
	root := newRootCmd(a)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestSyncCmd_Success(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "run.log")

	out, err := execute(t, siteStub(), "sync", "--output-dir", dir, "--log-file", logFile, "--csv")
	require.NoError(t, err)

	assert.Contains(t, out, "https://xyzrank.com/assets/index.deadbeef.js")
	assert.Contains(t, out, "hot_episodes_new")
	assert.Contains(t, out, "すべてのJSONファイルのダウンロードが完了しました！")

	for _, name := range []string{"full", "new_podcasts", "hot_episodes", "hot_episodes_new"} {
		assert.FileExists(t, filepath.Join(dir, name+".json"))
		assert.FileExists(t, filepath.Join(dir, name+".csv"))
	}

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "XYZRankデータ取得処理を開始します")
}

func TestSyncCmd_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	doer := siteStub()
	delete(doer, "https://cdn.test/hot-episodes.json")

	out, err := execute(t, doer, "sync", "-o", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errSyncFailed))
	assert.Contains(t, out, "処理中にエラーが発生しました")
	assert.NoFileExists(t, filepath.Join(dir, "hot_episodes.json"))
	assert.FileExists(t, filepath.Join(dir, "hot_episodes_new.json"))
}

func TestSyncCmd_DiscoveryFailure(t *testing.T) {
	dir := t.TempDir()
	doer := siteStub()
	doer["https://xyzrank.com"] = `<html><body>no scripts</body></html>`

	_, err := execute(t, doer, "sync", "-o", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errSyncFailed))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestDiscoverCmd(t *testing.T) {
	out, err := execute(t, siteStub(), "discover")
	require.NoError(t, err)

	assert.Contains(t, out, "スクリプトURL: https://xyzrank.com/assets/index.deadbeef.js")
	assert.Contains(t, out, "https://cdn.test/new-podcasts.json")
	assert.Contains(t, out, "new_podcasts")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	_, err := execute(t, siteStub(), "discover", "--entry-timeout", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout_entry")
}

func TestRootCmd_ConfigFlag(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	configPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output_dir: "+outDir+"\nexport_csv: true\n"), 0o644))

	_, err := execute(t, siteStub(), "sync", "--config", configPath)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "full.json"))
	assert.FileExists(t, filepath.Join(outDir, "full.csv"))
}

func TestRootCmd_ConfigFlagMissingFile(t *testing.T) {
	_, err := execute(t, siteStub(), "discover", "-C", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	a := &app{
		v:             viper.New(),
		clientOptions: []httpclient.ClientOption{httpclient.WithHTTPClient(siteStub())},
	}
	root := newRootCmd(a)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"discover", "-V"})

	require.NoError(t, root.Execute())
	assert.True(t, a.cfg.Verbose)
	assert.Equal(t, "debug", a.logger.GetLevel().String())
}
