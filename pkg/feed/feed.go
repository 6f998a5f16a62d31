// Package feed publishes row change notifications over NATS. Subscribers
// use it to refresh derived state (dashboards, usage counters); it is never
// on a correctness-critical path, so publishing is best-effort and a
// disabled feed is a no-op.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Op is the kind of row change being announced.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one row mutation on an organization-scoped table.
type Change struct {
	Table string    `json:"table"`
	Op    Op        `json:"op"`
	OrgID uint      `json:"org_id"`
	RowID uint      `json:"row_id"`
	At    time.Time `json:"at"`
}

// Config configures the feed connection. When Embed is set a NATS server is
// started in-process, which keeps single-binary deployments broker-free.
type Config struct {
	URL           string
	Embed         bool
	SubjectPrefix string
}

// Feed wraps the NATS connection. A nil *Feed is valid and inert.
type Feed struct {
	nc     *nats.Conn
	srv    *server.Server
	prefix string
	log    *zap.Logger
}

// Connect establishes the feed. With Embed set, an in-process server is
// started first and the client connects to it.
func Connect(cfg Config, log *zap.Logger) (*Feed, error) {
	url := cfg.URL

	var srv *server.Server
	if cfg.Embed {
		var err error
		srv, err = server.NewServer(&server.Options{
			Host: "127.0.0.1",
			Port: server.RANDOM_PORT,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embedded nats server: %w", err)
		}
		go srv.Start()
		if !srv.ReadyForConnections(5 * time.Second) {
			srv.Shutdown()
			return nil, fmt.Errorf("embedded nats server not ready")
		}
		url = srv.ClientURL()
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		if srv != nil {
			srv.Shutdown()
		}
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "vetcare.changes"
	}

	log.Info("change feed connected", zap.String("url", url), zap.Bool("embedded", srv != nil))
	return &Feed{nc: nc, srv: srv, prefix: prefix, log: log}, nil
}

func (f *Feed) subject(table string) string {
	return f.prefix + "." + table
}

// Publish announces a change. Failures are logged and dropped; callers must
// not depend on delivery.
func (f *Feed) Publish(change Change) {
	if f == nil || f.nc == nil {
		return
	}
	if change.At.IsZero() {
		change.At = time.Now()
	}
	payload, err := json.Marshal(change)
	if err != nil {
		f.log.Warn("feed marshal failed", zap.Error(err))
		return
	}
	if err := f.nc.Publish(f.subject(change.Table), payload); err != nil {
		f.log.Warn("feed publish failed",
			zap.String("table", change.Table),
			zap.Error(err))
	}
}

// OnChange subscribes to changes on one table. Malformed payloads are
// dropped.
func (f *Feed) OnChange(table string, cb func(Change)) (*nats.Subscription, error) {
	if f == nil || f.nc == nil {
		return nil, nil
	}
	return f.nc.Subscribe(f.subject(table), func(msg *nats.Msg) {
		var change Change
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			f.log.Warn("feed message dropped", zap.String("table", table), zap.Error(err))
			return
		}
		cb(change)
	})
}

// Close drains the connection and stops the embedded server if one was
// started.
func (f *Feed) Close() {
	if f == nil {
		return
	}
	if f.nc != nil {
		f.nc.Close()
	}
	if f.srv != nil {
		f.srv.Shutdown()
	}
}
