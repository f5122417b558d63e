package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
)

const (
	path = "/students/statistics"

	loadFailedMsg = "Failed to load statistics"
)

// Display names of the majors the counters are computed for.
const (
	LabelSI = "Sistem Informasi"
	LabelTI = "Teknologi Informasi"
)

// Stats are student counts computed by the backend.
// "si" is the Sistem Informasi major, "ti" Teknologi Informasi.
type Stats struct {
	SITotal       int `json:"siTotal"`
	TITotal       int `json:"tiTotal"`
	SIActive      int `json:"siActive"`
	TIActive      int `json:"tiActive"`
	SINotActive   int `json:"siNotActive"`
	TINotActive   int `json:"tiNotActive"`
	TotalStudents int `json:"totalStudents"`
}

// Aggregator holds the last statistics snapshot. It never computes anything itself.
type Aggregator struct {
	api       core.APIClient
	presenter core.Presenter
	logger    core.Logger

	mu     sync.RWMutex
	stats  Stats
	loaded bool
}

func NewAggregator(api core.APIClient, presenter core.Presenter, logger core.Logger) *Aggregator {
	return &Aggregator{api: api, presenter: presenter, logger: logger}
}

// Load replaces the snapshot with the backend's. On failure the snapshot is kept.
func (a *Aggregator) Load(ctx context.Context) error {
	var stats Stats
	if err := a.api.Get(ctx, path, &stats); err != nil {
		err = errors.Wrap(err, "loading statistics")
		a.logger.Error(err.Error(), err)
		a.presenter.Notify(core.NoticeError, loadFailedMsg)
		return err
	}
	a.mu.Lock()
	a.stats = stats
	a.loaded = true
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

func (a *Aggregator) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}
