package dataset

import (
	"net/url"
	"path"
	"strings"
)

// Category は、URLに含まれる目印と、保存時に使う分類ラベルの対応です。
type Category struct {
	Marker string
	Label  string
}

// FallbackLabel は、URLからラベルを導出できなかった場合に使う名前です。
const FallbackLabel = "data"

// Categories は判定順に並んだ分類表です。
// "hot-episodes-new." のような紛らわしいURLでも結果が変わらないよう、この順序は固定です。
var Categories = []Category{
	{Marker: "full.", Label: "full"},
	{Marker: "new-podcasts.", Label: "new_podcasts"},
	{Marker: "hot-episodes.", Label: "hot_episodes"},
	{Marker: "hot-episodes-new.", Label: "hot_episodes_new"},
}

// Classify は、データファイルURLを分類ラベルに変換します。
// 分類表のいずれの目印も含まない場合は、最後のパス要素から拡張子を除いた名前を返します。
func Classify(rawURL string) string {
	for _, c := range Categories {
		if strings.Contains(rawURL, c.Marker) {
			return c.Label
		}
	}
	return fallbackLabel(rawURL)
}

// fallbackLabel は、最後のパス要素を最初の "." で切った名前を返します。
func fallbackLabel(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	name := path.Base(p)
	if name == "/" || name == "." {
		return FallbackLabel
	}
	name, _, _ = strings.Cut(name, ".")
	if name == "" {
		return FallbackLabel
	}
	return name
}
