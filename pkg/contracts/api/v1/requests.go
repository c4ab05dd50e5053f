// Package api contains the HTTP contract of the fraudscope API.
package api

import (
	"time"

	"fraudscope/pkg/contracts/domain"
)

// HeadRequest selects how many leading rows to return
type HeadRequest struct {
	N int `json:"n" query:"n" validate:"min=0,max=1000"`
}

// GroupRatesRequest selects the grouping and target columns for a rate query
type GroupRatesRequest struct {
	Group      string `json:"group" query:"group" validate:"required,max=256"`
	Target     string `json:"target" query:"target" validate:"required,max=256,nefield=Group"`
	FilterTrue bool   `json:"filter_true" query:"filter_true"`
	Raw        bool   `json:"raw" query:"raw"`
}

// HealthResponse reports liveness and whether a dataset is loaded
type HealthResponse struct {
	Status        string       `json:"status"`
	Timestamp     time.Time    `json:"timestamp"`
	Version       string       `json:"version"`
	Uptime        string       `json:"uptime"`
	DatasetLoaded bool         `json:"dataset_loaded"`
	Transformed   bool         `json:"transformed"`
	Rows          int          `json:"rows"`
	Runtime       *RuntimeInfo `json:"runtime,omitempty"`
}

// RuntimeInfo describes the process serving the API
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Goroutines int    `json:"goroutines"`
}

// HeadResponse carries the first rows of the current table
type HeadResponse struct {
	Columns []string                  `json:"columns"`
	Rows    []map[string]domain.Value `json:"rows"`
}

// GroupRatesResponse carries the result of a rate query
type GroupRatesResponse struct {
	Group  string             `json:"group"`
	Target string             `json:"target"`
	Rows   []domain.GroupRate `json:"rows"`
}
