package metrics

import "testing"

func TestRecorderAccumulates(t *testing.T) {
	r := New("FrameBooth").
		Dimension("Format", "gif").
		Metric("ProcessingMs", 1234, UnitMilliseconds).
		Count("PipelineRuns").
		Property("SessionId", "sess-1")

	if r.namespace != "FrameBooth" {
		t.Errorf("namespace = %q", r.namespace)
	}
	if r.dimensions["Format"] != "gif" {
		t.Errorf("dimensions = %v", r.dimensions)
	}
	if r.metrics["ProcessingMs"].Unit != UnitMilliseconds {
		t.Errorf("ProcessingMs unit = %q", r.metrics["ProcessingMs"].Unit)
	}
	if r.values["ProcessingMs"] != float64(1234) {
		t.Errorf("ProcessingMs value = %v", r.values["ProcessingMs"])
	}
	if r.metrics["PipelineRuns"].Unit != UnitCount || r.values["PipelineRuns"] != float64(1) {
		t.Errorf("PipelineRuns = %+v / %v", r.metrics["PipelineRuns"], r.values["PipelineRuns"])
	}
	if r.properties["SessionId"] != "sess-1" {
		t.Errorf("properties = %v", r.properties)
	}
}

func TestFlushWithoutMetricsIsNoOp(t *testing.T) {
	// Must not panic or emit when nothing was recorded.
	New("FrameBooth").Property("SessionId", "sess-1").Flush()
}
