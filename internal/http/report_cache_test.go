package http

import (
	"testing"
	"time"
)

func TestReportCache(t *testing.T) {
	rc := NewReportCache(time.Minute)
	rc.Set("dashboard?", 1)
	rc.Set("forecast?month=2024-06", 2)

	if v, ok := rc.Get("dashboard?"); !ok || v.(int) != 1 {
		t.Errorf("Get() = %v, %v", v, ok)
	}
	if rc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rc.Len())
	}

	rc.Flush()
	if _, ok := rc.Get("dashboard?"); ok {
		t.Error("flush should drop entries")
	}
}

func TestReportCache_Disabled(t *testing.T) {
	for _, rc := range []*ReportCache{NewReportCache(0), nil} {
		rc.Set("k", 1)
		if _, ok := rc.Get("k"); ok {
			t.Error("disabled cache must not return values")
		}
		rc.Flush()
		if rc.Len() != 0 {
			t.Error("disabled cache must be empty")
		}
	}
}
