package decoder

import (
	"errors"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nguyengg/unarchive/arcerr"
)

// classify returns the errno and message for err.
//
// Every decoder in use reports a wrong or missing password differently, so apart from 7z's typed error the message is
// the only thing to go on.
func classify(err error) (int, string) {
	msg := err.Error()

	var e *arcerr.Error
	if errors.As(err, &e) && e.Code != 0 {
		return e.Code, msg
	}

	var re sevenzip.ReadError
	if errors.As(err, &re) && re.Encrypted {
		return arcerr.EPASS, msg
	}

	lower := strings.ToLower(msg)
	for _, s := range []string{"password", "passphrase", "encrypt", "decrypt"} {
		if strings.Contains(lower, s) {
			return arcerr.EPASS, msg
		}
	}

	return arcerr.ErrnoMisc, msg
}
