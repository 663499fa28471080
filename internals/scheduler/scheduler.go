package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"admissions_backend/internals/configs"
	leadService "admissions_backend/internals/features/crm/leads/service"
	authScheduler "admissions_backend/internals/features/users/auth/scheduler"
	"admissions_backend/internals/logger"
)

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Job is one named entry in the scheduler.
type Job struct {
	Name string
	Spec string
	Run  func()
}

// New builds a cron with a seconds field. Jobs never overlap themselves and
// a panicking job is logged instead of killing the process.
func New(jobs ...Job) (*cron.Cron, error) {
	cl := cronLogger{s: logger.L().Sugar().Named("cron")}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(configs.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	for _, j := range jobs {
		if j.Spec == "" || j.Spec == "-" {
			logger.Info("[CRON] job disabled", zap.String("job", j.Name))
			continue
		}
		if _, err := c.AddFunc(j.Spec, j.Run); err != nil {
			return nil, errors.Wrapf(err, "schedule %s (%q)", j.Name, j.Spec)
		}
		logger.Info("[CRON] job scheduled", zap.String("job", j.Name), zap.String("spec", j.Spec))
	}
	return c, nil
}

// FollowUpSweepJob marks leads cold after LEAD_COLD_AFTER_DAYS without contact.
func FollowUpSweepJob(svc *leadService.LeadService, days int) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		n, err := svc.SweepCold(ctx, days)
		if err != nil {
			logger.Error("[CRON] follow-up sweep failed", zap.Error(err))
			return
		}
		logger.Info("[CRON] follow-up sweep done", zap.Int64("marked_cold", n), zap.Int("days", days))
	}
}

// Start schedules the default jobs from configs and starts the cron.
// The caller stops it on shutdown.
func Start(db *gorm.DB) (*cron.Cron, error) {
	c, err := New(
		Job{
			Name: "follow-up-sweep",
			Spec: configs.CronFollowupSweep,
			Run:  FollowUpSweepJob(leadService.New(db), configs.LeadColdAfterDays),
		},
		Job{
			Name: "token-cleanup",
			Spec: configs.CronTokenCleanup,
			Run:  authScheduler.TokenCleanupJob(db),
		},
	)
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
