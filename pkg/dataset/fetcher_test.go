package dataset

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-xyzrank-sync/pkg/httpclient"
	"github.com/shouni/go-xyzrank-sync/pkg/runlog"
)

// MockGetter はテスト用の Getter インターフェースの実装です。
type MockGetter struct {
	body        string
	contentType string
	err         error
}

func (m *MockGetter) Get(ctx context.Context, rawURL string, timeout time.Duration) (*httpclient.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	header := make(http.Header)
	if m.contentType != "" {
		header.Set("Content-Type", m.contentType)
	}
	return &httpclient.Response{URL: rawURL, StatusCode: http.StatusOK, Header: header, Body: []byte(m.body)}, nil
}

func countLevel(entries []runlog.Entry, level logrus.Level) int {
	n := 0
	for _, e := range entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func TestFetcher_Fetch(t *testing.T) {
	ctx := context.Background()
	dataURL := "https://cdn.test/full.json"

	t.Run("json_content_type", func(t *testing.T) {
		log := runlog.New(nil)
		f, err := NewFetcher(&MockGetter{body: `{"a":1}`, contentType: "application/json; charset=utf-8"}, time.Second, log)
		require.NoError(t, err)

		payload, err := f.Fetch(ctx, dataURL)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(payload))
		assert.Equal(t, 0, countLevel(log.Entries(), logrus.WarnLevel))
	})

	t.Run("wrong_content_type_only_warns", func(t *testing.T) {
		log := runlog.New(nil)
		f, _ := NewFetcher(&MockGetter{body: `[1,2]`, contentType: "text/plain"}, time.Second, log)

		payload, err := f.Fetch(ctx, dataURL)
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(payload))
		assert.Equal(t, 1, countLevel(log.Entries(), logrus.WarnLevel))
	})

	t.Run("invalid_json_is_parse_error", func(t *testing.T) {
		f, _ := NewFetcher(&MockGetter{body: `<html>`, contentType: "application/json"}, time.Second, nil)

		payload, err := f.Fetch(ctx, dataURL)
		assert.Nil(t, payload)
		require.Error(t, err)
		assert.True(t, IsParseError(err))

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, dataURL, parseErr.URL)
	})

	t.Run("network_error", func(t *testing.T) {
		log := runlog.New(nil)
		f, _ := NewFetcher(&MockGetter{err: &httpclient.RequestError{URL: dataURL, Err: context.DeadlineExceeded}}, time.Second, log)

		_, err := f.Fetch(ctx, dataURL)
		require.Error(t, err)
		assert.True(t, httpclient.IsNetworkError(err))
		assert.False(t, IsParseError(err))
		assert.Equal(t, 1, countLevel(log.Entries(), logrus.ErrorLevel))
	})

	t.Run("nil_getter", func(t *testing.T) {
		_, err := NewFetcher(nil, time.Second, nil)
		assert.Error(t, err)
	})
}
