// Package logger provides a singleton Zap logger with context-based scoping.
//
// One global instance is initialized with Init(); request middlewares attach
// a scoped logger (request_id, method, path) to the context and From(ctx)
// retrieves it anywhere below, falling back to the singleton.
//
// "dev" environment logs to a colored console, "prod" emits JSON.
package logger
