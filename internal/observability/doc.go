// Package observability provides the CLI logger, threshold alerts derived
// from the health report, and a Slack notifier for those alerts.
package observability
