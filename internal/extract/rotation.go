package extract

import (
	"time"

	"gradebook-extract/internal/config"
)

// RotationPolicy schedules two independent checks against the 0-based
// course index: rotating the gateway session every RotateEvery courses
// (remote sessions time out if held across too many calls) and pausing
// every PauseEvery courses to throttle load on the server. A size of
// zero or less disables its check; index 0 never triggers either.
type RotationPolicy struct {
	RotateEvery int
	RotateDelay time.Duration
	PauseEvery  int
	PauseDelay  time.Duration
}

func PolicyFromConfig(cfg *config.Config) RotationPolicy {
	return RotationPolicy{
		RotateEvery: cfg.App.WSClientBatchSize,
		RotateDelay: cfg.App.WSClientBatchDelay,
		PauseEvery:  cfg.App.BatchWaitSize,
		PauseDelay:  cfg.App.BatchWaitDelay,
	}
}

func (p RotationPolicy) ShouldRotate(index int) bool {
	return fires(index, p.RotateEvery)
}

func (p RotationPolicy) ShouldPause(index int) bool {
	return fires(index, p.PauseEvery)
}

func fires(index, every int) bool {
	return index > 0 && every > 0 && index%every == 0
}
