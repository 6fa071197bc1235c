package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewTransferBar returns a byte-counting bar for loading name into memory.
//
// A quiet bar counts but never renders, so callers can write to it unconditionally.
func NewTransferBar(size int64, verb, name string, quiet bool) *progressbar.ProgressBar {
	description := fmt.Sprintf(`%s "%s"`, verb, TruncateName(name))
	if quiet {
		return progressbar.DefaultBytesSilent(size, description)
	}

	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(time.Second),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true))
}
