// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON lines on stderr
//   - Development: colored console output
//
// Library types (sessions, jars, transports) accept a *Logger and default
// to NewNop, so embedding the packages never produces output unless the
// caller asks for it.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	sessLog := logger.ForSession(string(sess.ID()), sess.Host())
//	sessLog.Debug("request finished", zap.Int("status", resp.StatusCode))
package logging
