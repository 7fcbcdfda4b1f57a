package usecase

// MetricsRecorder é implementado pela camada http (Prometheus).
type MetricsRecorder interface {
	DuplicateCheck(result string)
	DuplicateLookupError(field string)
	Merge(status string)
	FunnelTransition(from, to string)
	TrashPurged(count int)
}

type nopMetrics struct{}

func (nopMetrics) DuplicateCheck(string)           {}
func (nopMetrics) DuplicateLookupError(string)     {}
func (nopMetrics) Merge(string)                    {}
func (nopMetrics) FunnelTransition(string, string) {}
func (nopMetrics) TrashPurged(int)                 {}

func metricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
