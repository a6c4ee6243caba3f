// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"sync"

	"go.uber.org/zap"
)

var (
	nativeLogger     *zap.Logger
	nativeLoggerOnce sync.Once
)

// NativeLogger returns the logger of the native linker.
// It uses a no-op logger by default.
func NativeLogger() *zap.Logger {
	nativeLoggerOnce.Do(func() {
		if nativeLogger == nil {
			nativeLogger = zap.NewNop()
		}
	})
	return nativeLogger
}

// SetNativeLogger configures the logger of the native linker.
// This must be called before any linker is created. A nil logger is ignored.
func SetNativeLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	nativeLogger = l
}
