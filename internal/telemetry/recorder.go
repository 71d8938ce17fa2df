package telemetry

// Recorder fans a QueryEvent out to the Prometheus metrics and the query log.
// Either half may be nil.
type Recorder struct {
	Metrics *Metrics
	Log     *QueryLog
}

// NewRecorder combines m and l.
func NewRecorder(m *Metrics, l *QueryLog) *Recorder {
	return &Recorder{Metrics: m, Log: l}
}

// Record implements the engine's query observer.
func (r *Recorder) Record(e QueryEvent) {
	if r == nil {
		return
	}
	r.Metrics.ObserveQuery(e)
	if r.Log != nil {
		r.Log.Record(e)
	}
}

// Snapshot returns the query log snapshot, or nil when no log is attached.
func (r *Recorder) Snapshot() *QuerySnapshot {
	if r == nil || r.Log == nil {
		return nil
	}
	return r.Log.Snapshot()
}
