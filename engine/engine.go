// Package engine selects a MILP engine by name.
package engine

import (
	"log/slog"

	"github.com/pkg/errors"

	"example.com/your_project/hub-location/milp"
	"example.com/your_project/hub-location/milp/bnb"
	"example.com/your_project/hub-location/milp/highs"
)

// Names lists the engines New accepts.
var Names = []string{highs.Name, bnb.Name}

// New returns the engine called name. nodeLimit only applies to bnb.
func New(name string, nodeLimit int, logger *slog.Logger) (milp.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case highs.Name:
		return &highs.Engine{Logger: logger}, nil
	case bnb.Name:
		return &bnb.Engine{NodeLimit: nodeLimit, Logger: logger}, nil
	}
	return nil, errors.Wrapf(milp.ErrUnknownEngine, "%q", name)
}
