package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_SanitizesSensitiveKeys tests that sensitive keys are sanitized.
func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{
			name:     "authorization key is sanitized",
			key:      "authorization",
			value:    "Api-Key abc123",
			wantMask: true,
		},
		{
			name:     "Authorization key (uppercase) is sanitized",
			key:      "Authorization",
			value:    "Api-Key abc123",
			wantMask: true,
		},
		{
			name:     "api_key key is sanitized",
			key:      "api_key",
			value:    "AQVNabc",
			wantMask: true,
		},
		{
			name:     "x-api-key header is sanitized",
			key:      "x-api-key",
			value:    "apikey123",
			wantMask: true,
		},
		{
			name:     "password key is sanitized",
			key:      "password",
			value:    "secretpassword",
			wantMask: true,
		},
		{
			name:     "token key is sanitized",
			key:      "token",
			value:    "jwt.token.here",
			wantMask: true,
		},
		{
			name:     "iam_token key is sanitized",
			key:      "iam_token",
			value:    "t1.abc.def",
			wantMask: true,
		},
		{
			name:     "phrase key is not sanitized",
			key:      "phrase",
			value:    "пластиковые окна",
			wantMask: false,
		},
		{
			name:     "seed key is not sanitized",
			key:      "seed",
			value:    "купить диван",
			wantMask: false,
		},
		{
			name:     "keyword key is not sanitized",
			key:      "keyword",
			value:    "окна пвх",
			wantMask: false,
		},
		{
			name:     "cache_key key is not sanitized",
			key:      "cache_key",
			value:    "окна|2",
			wantMask: false,
		},
		{
			name:     "folder_id key is not sanitized",
			key:      "folder_id",
			value:    "b1gabcdef",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handler := NewSecureHandler(slog.NewTextHandler(&buf, nil))
			logger := slog.New(handler)

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()
			masked := strings.Contains(output, MaskValue)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, want %v (output: %s)", masked, tt.wantMask, output)
			}
			if tt.wantMask && strings.Contains(output, tt.value) {
				t.Errorf("sensitive value %q leaked into output: %s", tt.value, output)
			}
			if !tt.wantMask && !strings.Contains(output, tt.value) {
				t.Errorf("benign value %q missing from output: %s", tt.value, output)
			}
		})
	}
}

// TestSecureHandler_SanitizesSensitiveValues tests value pattern matching.
func TestSecureHandler_SanitizesSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{
			name:     "api-key scheme value",
			value:    "Api-Key AQVNxyz123",
			wantMask: true,
		},
		{
			name:     "AQVN key material",
			value:    "AQVNabcdefghijklmnopqrstuvwx",
			wantMask: true,
		},
		{
			name:     "iam token value",
			value:    "t1.9euelZqO.kJrNmc3LmZ2N",
			wantMask: true,
		},
		{
			name:     "jwt token value",
			value:    "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.abc123",
			wantMask: true,
		},
		{
			name:     "bearer token value",
			value:    "Bearer sometoken",
			wantMask: true,
		},
		{
			name:     "russian phrase",
			value:    "купить пластиковые окна",
			wantMask: false,
		},
		{
			name:     "url value",
			value:    "https://searchapi.api.cloud.yandex.net/v2/wordstat/topRequests",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handler := NewSecureHandler(slog.NewTextHandler(&buf, nil))
			logger := slog.New(handler)

			logger.Info("test message", "detail", tt.value)

			output := buf.String()
			masked := strings.Contains(output, MaskValue)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, want %v (output: %s)", masked, tt.wantMask, output)
			}
		})
	}
}

// TestSecureHandler_SanitizesGroups tests that attributes inside groups are sanitized.
func TestSecureHandler_SanitizesGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewSecureHandler(slog.NewTextHandler(&buf, nil))
	logger := slog.New(handler)

	logger.Info("request sent",
		slog.Group("headers",
			slog.String("authorization", "Api-Key secret123"),
			slog.String("x-folder-id", "b1gabcdef"),
		),
	)

	output := buf.String()
	if strings.Contains(output, "secret123") {
		t.Errorf("grouped sensitive value leaked: %s", output)
	}
	if !strings.Contains(output, "b1gabcdef") {
		t.Errorf("grouped benign value missing: %s", output)
	}
}

// TestSecureHandler_WithAttrs tests that preset attributes are sanitized.
func TestSecureHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewSecureHandler(slog.NewTextHandler(&buf, nil))
	logger := slog.New(handler).With("api_key", "AQVNsecret", "component", "wordstat")

	logger.Info("fetch complete")

	output := buf.String()
	if strings.Contains(output, "AQVNsecret") {
		t.Errorf("preset sensitive value leaked: %s", output)
	}
	if !strings.Contains(output, "component=wordstat") {
		t.Errorf("preset benign attr missing: %s", output)
	}
}

// TestNewSecureLogger tests the logger constructor's level handling.
func TestNewSecureLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)

		logger.Debug("debug message")

		if !strings.Contains(buf.String(), "debug message") {
			t.Error("verbose logger should emit debug records")
		}
	})

	t.Run("quiet suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)

		logger.Info("info message")
		logger.Warn("warn message")

		output := buf.String()
		if strings.Contains(output, "info message") {
			t.Error("quiet logger should suppress info records")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("quiet logger should emit warn records")
		}
	})
}

// TestNewSecureJSONLogger tests JSON output with sanitization.
func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, true)

	logger.Info("test", "token", "secretvalue")

	output := buf.String()
	if !strings.Contains(output, `"msg":"test"`) {
		t.Errorf("expected JSON output, got: %s", output)
	}
	if strings.Contains(output, "secretvalue") {
		t.Errorf("sensitive value leaked in JSON output: %s", output)
	}
}

// TestNewSecureHandler_NilHandler tests the nil fallback.
func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	handler := NewSecureHandler(nil)
	if handler == nil {
		t.Fatal("NewSecureHandler(nil) returned nil")
	}
}
