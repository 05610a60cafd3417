// Package logger provides structured logging built on zap.
// A process-wide sugared logger with an atomic level is initialized at startup;
// the context helpers let callers attach named or annotated loggers to a context
// so that session and sync logs carry the user id and task id they belong to.
package logger
