package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/metrics"
)

const queryStartKey = "rxclinic:query_start"

// MetricsPlugin records the duration of every gorm operation in
// metrics.Collector.DBQueryDuration, labelled by operation and table.
type MetricsPlugin struct {
	m *metrics.Collector
}

func NewMetricsPlugin(m *metrics.Collector) *MetricsPlugin {
	return &MetricsPlugin{m: m}
}

func (p *MetricsPlugin) Name() string {
	return "rxclinic:metrics"
}

func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create",
			func(n string, fn func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Create().After("gorm:create").Register(n, fn) }},
		{"query",
			func(n string, fn func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Query().After("gorm:query").Register(n, fn) }},
		{"update",
			func(n string, fn func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Update().After("gorm:update").Register(n, fn) }},
		{"delete",
			func(n string, fn func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Delete().After("gorm:delete").Register(n, fn) }},
		{"row",
			func(n string, fn func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Row().After("gorm:row").Register(n, fn) }},
		{"raw",
			func(n string, fn func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Raw().After("gorm:raw").Register(n, fn) }},
	}

	for _, h := range hooks {
		if err := h.before("rxclinic:before_"+h.op, p.start); err != nil {
			return err
		}
		if err := h.after("rxclinic:after_"+h.op, p.observe(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func (p *MetricsPlugin) start(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (p *MetricsPlugin) observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		p.m.DBQueryDuration.WithLabelValues(op, db.Statement.Table).Observe(time.Since(start).Seconds())
	}
}
