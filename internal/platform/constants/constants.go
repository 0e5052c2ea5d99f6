// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts and cross-cutting keys that are shared between
different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: session cookie configuration.
  - Messaging: queue names shared by the producer and the consumer.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "backsite"
	AppVersion = "1.0.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Authentication

const (
	// SessionCookieName is the name of the httpOnly cookie holding the session token.
	SessionCookieName = "session"

	// SessionCookiePath scopes the session cookie to the whole API.
	SessionCookiePath = "/"

	// DefaultSessionTTL is the lifetime of a freshly issued session (14 days).
	DefaultSessionTTL = 14 * 24 * time.Hour

	// HeaderAuthorization is an alternative credential carrier for non-browser clients.
	HeaderAuthorization = "Authorization"
)

// # Messaging

const (
	// QueueEmailJobs is the only queue defined by the core.
	QueueEmailJobs = "email_jobs"

	// DefaultBrokerRetryInterval is the fixed backoff between consumer connection attempts.
	DefaultBrokerRetryInterval = 60 * time.Second

	// ConsumerStopTimeout bounds how long shutdown waits for the listener to exit.
	ConsumerStopTimeout = 15 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldSuccess = "success"
	FieldMessage = "msg"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)
