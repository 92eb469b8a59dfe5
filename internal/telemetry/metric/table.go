package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TableMetrics holds the operation counters shared by all tables of one
// process. All methods are safe on a nil receiver so callers can run
// without metrics wired up.
type TableMetrics struct {
	finds   *prometheus.CounterVec
	inserts *prometheus.CounterVec
	removes *prometheus.CounterVec
	clears  *prometheus.CounterVec

	keysFound  *prometheus.CounterVec
	keysMissed *prometheus.CounterVec

	batchCommits *prometheus.CounterVec

	snapshotBytes *prometheus.CounterVec
}

// NewTableMetrics creates the table metrics and registers them with registry.
//
// This should be called once during initialization.
func NewTableMetrics(registry *prometheus.Registry) *TableMetrics {
	m := &TableMetrics{
		finds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "finds_total",
			Help:      "Total number of Find operations",
		}, []string{"table"}),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "inserts_total",
			Help:      "Total number of Insert operations",
		}, []string{"table"}),
		removes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "removes_total",
			Help:      "Total number of Remove operations",
		}, []string{"table"}),
		clears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "clears_total",
			Help:      "Total number of Clear operations",
		}, []string{"table"}),
		keysFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "keys_found_total",
			Help:      "Keys resolved from the store during Find",
		}, []string{"table"}),
		keysMissed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "keys_missed_total",
			Help:      "Keys filled from the default value during Find",
		}, []string{"table"}),
		batchCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "table",
			Name:      "batch_commits_total",
			Help:      "Write batches committed to the store",
		}, []string{"table"}),
		snapshotBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskemb",
			Subsystem: "snapshot",
			Name:      "bytes_total",
			Help:      "Snapshot bytes written or read, by direction",
		}, []string{"table", "direction"}),
	}

	registry.MustRegister(
		m.finds,
		m.inserts,
		m.removes,
		m.clears,
		m.keysFound,
		m.keysMissed,
		m.batchCommits,
		m.snapshotBytes,
	)

	return m
}

// ObserveFind records one Find call with its hit/miss split.
func (m *TableMetrics) ObserveFind(table string, found, missed int) {
	if m == nil {
		return
	}
	m.finds.WithLabelValues(table).Inc()
	m.keysFound.WithLabelValues(table).Add(float64(found))
	m.keysMissed.WithLabelValues(table).Add(float64(missed))
}

// ObserveInsert records one Insert call.
func (m *TableMetrics) ObserveInsert(table string) {
	if m == nil {
		return
	}
	m.inserts.WithLabelValues(table).Inc()
}

// ObserveRemove records one Remove call.
func (m *TableMetrics) ObserveRemove(table string) {
	if m == nil {
		return
	}
	m.removes.WithLabelValues(table).Inc()
}

// ObserveClear records one Clear call.
func (m *TableMetrics) ObserveClear(table string) {
	if m == nil {
		return
	}
	m.clears.WithLabelValues(table).Inc()
}

// ObserveBatchCommit records one committed write batch.
func (m *TableMetrics) ObserveBatchCommit(table string) {
	if m == nil {
		return
	}
	m.batchCommits.WithLabelValues(table).Inc()
}

// ObserveSnapshot records snapshot traffic. Direction is "export" or "import".
func (m *TableMetrics) ObserveSnapshot(table, direction string, bytes int64) {
	if m == nil {
		return
	}
	m.snapshotBytes.WithLabelValues(table, direction).Add(float64(bytes))
}
