// SPDX-License-Identifier: MIT
/*
Package transport publishes the live pitch feed to external consumers.
Implementations subscribe to the distributor and must be thread-safe;
Send is called from the pipeline goroutine and must never block it.
*/
package transport

// Transport is a generic sink for published pitch samples.
type Transport interface {
	Send(data any) error
	Close() error
}
