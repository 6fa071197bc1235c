package unarchive

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// lookupEncoding returns the encoding for a WHATWG label such as "gbk" or "windows-1251".
func lookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}

	return enc, nil
}

// localeEncodings maps the language of the locale to the legacy encoding most archivers on such a system would use.
var localeEncodings = map[string]string{
	"be": "windows-1251",
	"bg": "windows-1251",
	"bs": "windows-1251",
	"mk": "windows-1251",
	"ru": "windows-1251",
	"sr": "windows-1251",
	"uk": "windows-1251",
	"ja": "shift_jis",
	"ko": "euc-kr",
	"zh": "gb18030",
}

// localeEncoding returns the fallback encoding from LC_ALL, LC_CTYPE or LANG, nil if there is none.
func localeEncoding() encoding.Encoding {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}

		lang, _, _ := strings.Cut(v, "_")
		lang, _, _ = strings.Cut(lang, ".")
		if label, ok := localeEncodings[strings.ToLower(lang)]; ok {
			enc, _ := htmlindex.Get(label)
			return enc
		}

		return nil
	}

	return nil
}

// decodeText decodes raw metadata bytes into a string.
//
// Valid UTF-8 is returned as is. Otherwise the requested encoding is used, or the locale's fallback followed by
// windows-1252 if no encoding was requested; a decoded result is only accepted if it has no replacement character.
// When no encoding fits, raw is read as UTF-8 with every invalid sequence replaced by U+FFFD. Text containing NUL
// is never a valid name so the empty string is returned for it.
func decodeText(raw []byte, enc encoding.Encoding) string {
	if len(raw) == 0 || bytes.IndexByte(raw, 0) >= 0 {
		return ""
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	var candidates []encoding.Encoding
	if enc != nil {
		candidates = append(candidates, enc)
	} else {
		if enc = localeEncoding(); enc != nil {
			candidates = append(candidates, enc)
		}
		candidates = append(candidates, charmap.Windows1252)
	}

	for _, enc = range candidates {
		s, err := enc.NewDecoder().String(string(raw))
		if err == nil && !strings.ContainsRune(s, utf8.RuneError) && !strings.ContainsRune(s, 0) {
			return s
		}
	}

	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
