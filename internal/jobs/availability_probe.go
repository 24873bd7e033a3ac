package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"interviewassist/core/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Prober is satisfied by *resilience.Executor.
type Prober interface {
	Probe(ctx context.Context) models.ProviderStatus
}

// ProbeConfig contains configuration for the availability probe
type ProbeConfig struct {
	Schedule string        // cron schedule, e.g. "@every 5m"
	Enabled  bool          // whether to schedule probes at all
	Timeout  time.Duration // upper bound for one probe
}

// AvailabilityProbeJob periodically checks the text-generation provider so
// readiness reflects reality even when no interview is running.
type AvailabilityProbeJob struct {
	prober Prober
	config *ProbeConfig
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.Mutex
	last *models.ProviderStatus
}

func NewAvailabilityProbeJob(prober Prober, config *ProbeConfig, logger *zap.Logger) *AvailabilityProbeJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityProbeJob{
		prober: prober,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the probe
func (j *AvailabilityProbeJob) Start() error {
	if !j.config.Enabled {
		j.logger.Info("Availability probe is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() { j.RunOnce(context.Background()) })
	if err != nil {
		return fmt.Errorf("failed to schedule availability probe: %w", err)
	}

	j.cron.Start()
	j.logger.Info("Availability probe started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop waits for a running probe to finish
func (j *AvailabilityProbeJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.logger.Info("Availability probe stopped")
	}
}

// RunOnce probes the provider and logs availability changes.
func (j *AvailabilityProbeJob) RunOnce(ctx context.Context) models.ProviderStatus {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	status := j.prober.Probe(ctx)

	j.mu.Lock()
	previous := j.last
	j.last = &status
	j.mu.Unlock()

	switch {
	case previous == nil || previous.Available != status.Available:
		fields := []zap.Field{
			zap.Bool("available", status.Available),
			zap.String("provider", status.Provider),
		}
		if !status.Available {
			fields = append(fields, zap.String("kind", status.LastErrorKind))
			j.logger.Warn("AI provider unavailable", fields...)
		} else {
			j.logger.Info("AI provider available", fields...)
		}
	default:
		j.logger.Debug("AI provider probe", zap.Bool("available", status.Available))
	}
	return status
}

// LastStatus returns the most recent probe result, if any.
func (j *AvailabilityProbeJob) LastStatus() (models.ProviderStatus, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.last == nil {
		return models.ProviderStatus{}, false
	}
	return *j.last, true
}
