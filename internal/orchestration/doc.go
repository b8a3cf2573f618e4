// Package orchestration evaluates the MACS at every requested temperature with
// bounded concurrency and applies the batch failure policy. It decouples the
// computation from presentation via the ProgressReporter, ResultPresenter and
// ErrorHandler interfaces.
package orchestration
