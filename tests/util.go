package testutil

import (
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/services/backend"
	"github.com/trezcool/akademik/services/logger"
)

// Logger returns a logger that discards everything and never reports to Rollbar.
func Logger() core.Logger {
	std := log.New(ioutil.Discard, "TEST : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(std, &core.Config{Env: "TEST", Build: "test"})
}

// Client returns an API client for the fake backend.
func Client(t *testing.T, b *Backend) *backendsvc.Client {
	t.Helper()
	return backendsvc.NewClient(backendsvc.Options{
		BaseURL: b.URL + "/api",
		Timeout: 5 * time.Second,
	})
}
