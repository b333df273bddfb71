package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard HTTP fields.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }

// Domain fields.

func Platform(v string) zap.Field  { return zap.String("platform", v) }
func LinkToken(v string) zap.Field { return zap.String("link_token", v) }
func ClientID(v string) zap.Field  { return zap.String("client_id", v) }
func Flow(v string) zap.Field      { return zap.String("flow", v) }

// Layer identifies the code layer (controller, service, repository).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Op identifies the operation being executed.
func Op(v string) zap.Field { return zap.String("op", v) }

// Component identifies a subcomponent within a layer.
func Component(v string) zap.Field { return zap.String("component", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// Generic fields.

func Count(v int) zap.Field            { return zap.Int("count", v) }
func ID(v string) zap.Field            { return zap.String("id", v) }
func Key(v string) zap.Field           { return zap.String("key", v) }
func Any(key string, v any) zap.Field  { return zap.Any(key, v) }
func String(key, v string) zap.Field   { return zap.String(key, v) }
func Int(key string, v int) zap.Field  { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
