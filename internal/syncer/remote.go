// Package syncer replicates aggregate snapshots to a remote endpoint.
// Replication is best-effort: the local store has already been written by
// the time a snapshot reaches this package, so a remote failure only costs
// freshness, never state.
package syncer

import (
	"bytes"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Remote pushes snapshots with a plain JSON POST.
type Remote struct {
	endpoint string
	client   *http.Client
	log      *logrus.Entry
}

// NewRemote builds a syncer from the SYNC_URL environment variable.
// Returns nil when replication is not configured.
func NewRemote() *Remote {
	endpoint := os.Getenv("SYNC_URL")
	if endpoint == "" {
		return nil
	}
	return &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logrus.WithField("component", "syncer"),
	}
}

// Push replicates a snapshot in the background. It returns immediately;
// failures are logged and dropped.
func (r *Remote) Push(snapshot []byte) {
	go func() {
		resp, err := r.client.Post(r.endpoint, "application/json", bytes.NewReader(snapshot))
		if err != nil {
			r.log.WithError(err).Warn("remote replication failed")
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			r.log.WithField("status", resp.StatusCode).Warn("remote replication rejected")
		}
	}()
}
