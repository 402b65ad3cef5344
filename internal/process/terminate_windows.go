//go:build windows

package process

import (
	"log/slog"
	"time"
)

func newPlatformTerminator(_ time.Duration, logger *slog.Logger) Terminator {
	return directTerminator{logger: logger}
}
