package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler periodically copies the data file into a snapshot directory.
// Snapshots are full copies; the data file is small by design.
type Scheduler struct {
	dataPath string
	dir      string
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewScheduler(dataPath, dir, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		dataPath: dataPath,
		dir:      dir,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Snapshot(); err != nil {
			s.logger.Error("backup snapshot failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("backup: invalid schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("backup scheduler started",
		zap.String("schedule", s.schedule),
		zap.String("dir", s.dir))
	return nil
}

// Stop halts the cron loop. Running snapshots finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Snapshot copies the current data file into the backup directory with a
// timestamped name. A missing data file is not an error; there is simply
// nothing to back up yet.
func (s *Scheduler) Snapshot() error {
	data, err := os.ReadFile(s.dataPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	name := fmt.Sprintf("data-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	target := filepath.Join(s.dir, name)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return err
	}

	s.logger.Info("backup snapshot written", zap.String("path", target))
	return nil
}
