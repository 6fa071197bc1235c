package unarchive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDecodeText(t *testing.T) {
	t.Setenv("LC_ALL", "C")

	gbk, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("说明.txt"))
	require.NoError(t, err)

	gb18030, err := lookupEncoding("gb18030")
	require.NoError(t, err)
	shiftJIS, err := lookupEncoding("shift_jis")
	require.NoError(t, err)

	tests := []struct {
		name     string
		raw      []byte
		enc      string
		expected string
	}{
		{name: "empty", raw: nil, expected: ""},
		{name: "utf-8", raw: []byte("héllo/wörld"), expected: "héllo/wörld"},
		{name: "utf-8 with NUL", raw: []byte("a\x00b"), expected: ""},
		{name: "gb18030", raw: gbk, enc: "gb18030", expected: "说明.txt"},
		{name: "windows-1252 fallback", raw: []byte("caf\xe9"), expected: "café"},
		{name: "lossy utf-8 when the encoding does not fit", raw: []byte{0x82, 0xa0, 0xff}, enc: "shift_jis", expected: "\ufffd"},
		{name: "lossy utf-8 keeps valid runes", raw: []byte("ok-\x82\xa0\xff.txt"), enc: "shift_jis", expected: "ok-\ufffd.txt"},
		{name: "utf-8 with replacement character", raw: []byte("a\ufffdb"), expected: "a\ufffdb"},
		{name: "invalid with NUL", raw: []byte("caf\xe9\x00"), expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch tt.enc {
			case "gb18030":
				assert.Equal(t, tt.expected, decodeText(tt.raw, gb18030))
			case "shift_jis":
				assert.Equal(t, tt.expected, decodeText(tt.raw, shiftJIS))
			default:
				assert.Equal(t, tt.expected, decodeText(tt.raw, nil))
			}
		})
	}
}

func TestLocaleEncoding(t *testing.T) {
	tests := []struct {
		lcAll, lang string
		expected    string
	}{
		{lcAll: "ru_RU.CP1251", expected: "windows-1251"},
		{lang: "ja_JP.SJIS", expected: "shift_jis"},
		{lcAll: "C", lang: "ko_KR", expected: ""},
		{lang: "en_US.UTF-8", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.lcAll+tt.lang, func(t *testing.T) {
			t.Setenv("LC_ALL", tt.lcAll)
			t.Setenv("LC_CTYPE", "")
			t.Setenv("LANG", tt.lang)

			enc := localeEncoding()
			if tt.expected == "" {
				assert.Nil(t, enc)
				return
			}

			want, err := lookupEncoding(tt.expected)
			require.NoError(t, err)
			assert.Equal(t, want, enc)
		})
	}
}
