// Package domain defines the derived view models. Views are projections
// computed from a tenant's decrypted latest snapshot; they are never stored
// durably, only cached.
package domain

import (
	"github.com/hash066/biavault/internal/errors"
)

// Name identifies a derived view.
type Name string

const (
	// Heatmap aggregates impact severity counts per business category.
	Heatmap Name = "heatmap"
	// DependencyGraph projects the process dependency adjacency.
	DependencyGraph Name = "dependency-graph"
)

// Valid reports whether the view name is one of the known values.
func (n Name) Valid() bool {
	return n == Heatmap || n == DependencyGraph
}

// ErrUnknownView indicates a request for a view this service does not compute.
var ErrUnknownView = errors.Wrap(errors.ErrInvalidInput, "unknown view name")

// Process is the slice of the snapshot payload the views consume. The
// payload stays opaque to crypto and storage; only this package interprets
// it, and unknown fields are ignored.
type Process struct {
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Impact    string   `json:"impact"`
	DependsOn []string `json:"depends_on"`
}

// Dataset is the top-level payload shape the views consume.
type Dataset struct {
	Processes []Process `json:"processes"`
}

// HeatmapView maps category -> impact severity -> process count.
type HeatmapView map[string]map[string]int

// ComputeHeatmap aggregates the dataset into severity counts per category.
// Processes without a category or impact are grouped under "uncategorized"
// and "unknown" so the view always accounts for every process.
func ComputeHeatmap(dataset *Dataset) HeatmapView {
	view := make(HeatmapView)
	for _, process := range dataset.Processes {
		category := process.Category
		if category == "" {
			category = "uncategorized"
		}
		impact := process.Impact
		if impact == "" {
			impact = "unknown"
		}

		if view[category] == nil {
			view[category] = make(map[string]int)
		}
		view[category][impact]++
	}
	return view
}

// DependencyGraphView maps each process name to the processes it depends on.
type DependencyGraphView map[string][]string

// ComputeDependencyGraph projects the dataset's dependency adjacency. Every
// process appears as a node even when it has no dependencies.
func ComputeDependencyGraph(dataset *Dataset) DependencyGraphView {
	view := make(DependencyGraphView, len(dataset.Processes))
	for _, process := range dataset.Processes {
		if process.Name == "" {
			continue
		}
		deps := process.DependsOn
		if deps == nil {
			deps = []string{}
		}
		view[process.Name] = deps
	}
	return view
}
