// Package log provides secure logging functionality with automatic sanitization
// of credential material, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (API keys, auth headers)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, X-Api-Key)
//   - API keys detected by pattern matching, including the cloud
//     "Api-Key ..." authorization scheme and AQVN-prefixed key material
//   - Passwords, tokens, and other credential-like attribute keys
//
// Even in verbose mode, credential values are masked so that debug logs
// attached to bug reports never leak a working API key.
//
// Note that "seed" is deliberately NOT treated as sensitive: in this
// application a seed is a search phrase, the primary domain object, and
// masking it would make debug output useless.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "authorization", "Api-Key abc123",  // Will be sanitized
//	    "phrase", "пластиковые окна",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
