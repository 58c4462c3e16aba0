package extract

import (
	"testing"
	"time"

	"gradebook-extract/internal/config"
)

func TestRotationPolicy_DisabledThresholds(t *testing.T) {
	for _, every := range []int{0, -1} {
		p := RotationPolicy{RotateEvery: every, PauseEvery: every}
		for i := 0; i < 20; i++ {
			if p.ShouldRotate(i) {
				t.Errorf("RotateEvery=%d fired at index %d", every, i)
			}
			if p.ShouldPause(i) {
				t.Errorf("PauseEvery=%d fired at index %d", every, i)
			}
		}
	}
}

func TestRotationPolicy_FiresOnMultiples(t *testing.T) {
	p := RotationPolicy{RotateEvery: 3}

	var fired []int
	for i := 0; i < 7; i++ {
		if p.ShouldRotate(i) {
			fired = append(fired, i)
		}
	}

	want := []int{3, 6}
	if len(fired) != len(want) {
		t.Fatalf("rotation fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("rotation fired at %v, want %v", fired, want)
		}
	}
}

func TestRotationPolicy_NeverFiresAtIndexZero(t *testing.T) {
	p := RotationPolicy{RotateEvery: 1, PauseEvery: 1}
	if p.ShouldRotate(0) || p.ShouldPause(0) {
		t.Error("policy fired at index 0")
	}
}

func TestRotationPolicy_IndependentChecks(t *testing.T) {
	p := RotationPolicy{RotateEvery: 2, PauseEvery: 3}

	if !p.ShouldRotate(6) || !p.ShouldPause(6) {
		t.Error("both checks should fire at a shared multiple")
	}
	if !p.ShouldRotate(4) || p.ShouldPause(4) {
		t.Error("only the rotation check should fire at index 4")
	}
	if p.ShouldRotate(3) || !p.ShouldPause(3) {
		t.Error("only the pause check should fire at index 3")
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.WSClientBatchSize = 5
	cfg.App.WSClientBatchDelay = 2 * time.Second
	cfg.App.BatchWaitSize = 10
	cfg.App.BatchWaitDelay = time.Second

	p := PolicyFromConfig(cfg)
	if p.RotateEvery != 5 || p.RotateDelay != 2*time.Second {
		t.Errorf("rotation settings not carried: %+v", p)
	}
	if p.PauseEvery != 10 || p.PauseDelay != time.Second {
		t.Errorf("pause settings not carried: %+v", p)
	}
}
