// Package model defines shared data structures.
package model

import "time"

// Config defines window settings resolved from the config file and flags.
type Config struct {
	Samples   int
	Color     bool
	Journal   bool
	PlotWidth int
	LogLevel  string
	ExportDir string
}

// HistoryConfig defines filters for the fit journal listing.
type HistoryConfig struct {
	Function string
	Since    *time.Time
	Last     int
}

// ParamValue is one fitted parameter.
type ParamValue struct {
	Name   string
	Value  float64
	StdErr float64
}

// FitRecord captures a completed fit.
type FitRecord struct {
	SessionID   string
	Title       string
	Function    string
	Lo          float64
	Hi          float64
	Params      []ParamValue
	SSR         float64
	Points      int
	Evaluations int
	CreatedAt   time.Time
}

// FitAggregate summarizes fits of one function for reporting.
type FitAggregate struct {
	Function string
	Fits     int
	BestSSR  float64
	LastAt   time.Time
}
