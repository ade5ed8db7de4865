// SPDX-License-Identifier: MIT
package transport

import (
	applog "voicebird/internal/log"
)

// LoggingTransport is the fallback sink used when no network transport
// is enabled: it logs each sample at debug level and never fails.
type LoggingTransport struct{}

// NewLoggingTransport creates a logging sink.
func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

// Send logs the sample at debug level.
func (lt *LoggingTransport) Send(data any) error {
	applog.Debugf("transport: %+v", data)
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
