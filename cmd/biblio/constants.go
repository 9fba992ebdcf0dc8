package main

import "time"

// Default limits for CLI commands.
const (
	DefaultListLimit    = 50
	DefaultHistoryLimit = 20
	DefaultSearchLimit  = 10
)

// metricsPushTimeout bounds the Pushgateway call made after each command.
const metricsPushTimeout = 5 * time.Second
