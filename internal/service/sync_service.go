package service

import (
	"context"
	"fmt"
	"time"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"

	"go.uber.org/zap"
)

// Sync run types recorded in sync_logs.
const (
	SyncTypeScheduled = "scheduled"
	SyncTypeManual    = "manual"
)

// SyncResult is the outcome of one housekeeping pass.
type SyncResult struct {
	RecordsSynced int64
	TableErrors   []string
}

// SyncService stamps synced_at on rows that changed since the last pass and
// records each run in sync_logs. It also probes for the known consistency
// gap of check-out: completed actions whose schedule row never flipped to
// completed.
type SyncService interface {
	Run(ctx context.Context, syncType string) (*SyncResult, error)
	Logs(ctx context.Context, limit int) ([]*domain.SyncLog, error)
}

type syncService struct {
	outletsRepo    repository.OutletsRepository
	assigneesRepo  repository.AssigneesRepository
	mdSchedules    repository.SchedulesRepository
	salesSchedules repository.SchedulesRepository
	actionsRepo    repository.ActionsRepository
	syncLogsRepo   repository.SyncLogsRepository
	logger         *zap.Logger
}

func NewSyncService(
	outletsRepo repository.OutletsRepository,
	assigneesRepo repository.AssigneesRepository,
	mdSchedules, salesSchedules repository.SchedulesRepository,
	actionsRepo repository.ActionsRepository,
	syncLogsRepo repository.SyncLogsRepository,
	logger *zap.Logger,
) SyncService {
	return &syncService{
		outletsRepo:    outletsRepo,
		assigneesRepo:  assigneesRepo,
		mdSchedules:    mdSchedules,
		salesSchedules: salesSchedules,
		actionsRepo:    actionsRepo,
		syncLogsRepo:   syncLogsRepo,
		logger:         logger,
	}
}

// Run marks every dirty row across the business tables. A failing table is
// logged and skipped; the pass always finishes and always writes its summary
// row to sync_logs.
func (s *syncService) Run(ctx context.Context, syncType string) (*SyncResult, error) {
	type table struct {
		name string
		mark func(context.Context) (int64, error)
	}
	tables := []table{
		{"assignees", s.assigneesRepo.MarkSynced},
		{"outlets", s.outletsRepo.MarkSynced},
		{"visit_schedules_md", s.mdSchedules.MarkSynced},
		{"visit_schedules_sales", s.salesSchedules.MarkSynced},
		{"visit_actions", s.actionsRepo.MarkSynced},
	}

	result := &SyncResult{}
	for _, t := range tables {
		n, err := t.mark(ctx)
		if err != nil {
			result.TableErrors = append(result.TableErrors, fmt.Sprintf("%s: %v", t.name, err))
			s.logger.Error("sync table failed", zap.String("table", t.name), zap.Error(err))
			continue
		}
		result.RecordsSynced += n
		s.logger.Debug("sync table done", zap.String("table", t.name), zap.Int64("records", n))
	}

	s.reconcile(ctx)

	status := "success"
	message := fmt.Sprintf("Synced %d total records", result.RecordsSynced)
	if len(result.TableErrors) > 0 {
		status = "error"
		message = fmt.Sprintf("Synced %d total records, %d tables failed", result.RecordsSynced, len(result.TableErrors))
	}
	logRow := &domain.SyncLog{
		SyncType:    syncType,
		TableName:   "all",
		RecordCount: int(result.RecordsSynced),
		Status:      status,
		Message:     message,
	}
	if err := s.syncLogsRepo.Insert(ctx, logRow); err != nil {
		s.logger.Error("failed to record sync run", zap.Error(err))
	}

	s.logger.Info("sync pass complete",
		zap.String("sync_type", syncType),
		zap.Int64("records_synced", result.RecordsSynced),
		zap.Int("table_errors", len(result.TableErrors)),
	)
	return result, nil
}

// reconcile counts completed actions whose originating schedule row is still
// marked scheduled. Check-out writes the action and the schedule in two
// non-atomic steps, so a crash in between leaves this residue; the pass only
// surfaces it, it does not repair.
func (s *syncService) reconcile(ctx context.Context) {
	actions, err := s.actionsRepo.List(ctx, repository.ActionFilters{Completion: repository.CompletionCompleted})
	if err != nil {
		s.logger.Error("reconcile probe failed", zap.Error(err))
		return
	}

	var stale int
	for _, a := range actions {
		schedules := s.mdSchedules
		if a.RoleType == domain.RoleSales {
			schedules = s.salesSchedules
		}
		sch, err := schedules.Get(ctx, a.ScheduleID)
		if err != nil {
			continue // deleted schedule rows are an accepted orphan
		}
		if sch.Status == domain.ScheduleStatusScheduled {
			stale++
			s.logger.Warn("completed action against still-scheduled row",
				zap.Int64("action_id", a.ID),
				zap.Int64("schedule_id", a.ScheduleID),
				zap.String("role_type", string(a.RoleType)),
			)
		}
	}
	if stale > 0 {
		s.logger.Warn("reconcile probe found incomplete check-outs", zap.Int("count", stale))
	}
}

func (s *syncService) Logs(ctx context.Context, limit int) ([]*domain.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs, err := s.syncLogsRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	return logs, nil
}

// SyncScheduler fires the housekeeping pass at fixed local wall-clock times
// each day.
type SyncScheduler struct {
	svc    SyncService
	times  []string // "HH:MM"
	logger *zap.Logger
}

func NewSyncScheduler(svc SyncService, times []string, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{svc: svc, times: times, logger: logger}
}

// Start runs the scheduler until ctx is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) {
	go func() {
		for {
			next, ok := s.nextRun(time.Now())
			if !ok {
				s.logger.Warn("sync scheduler has no valid run times, stopping")
				return
			}
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if _, err := s.svc.Run(ctx, SyncTypeScheduled); err != nil {
					s.logger.Error("scheduled sync failed", zap.Error(err))
				}
			}
		}
	}()
	s.logger.Info("sync scheduler started", zap.Strings("times", s.times))
}

// nextRun returns the earliest configured wall-clock time after now.
func (s *SyncScheduler) nextRun(now time.Time) (time.Time, bool) {
	var next time.Time
	for _, t := range s.times {
		parsed, err := time.Parse("15:04", t)
		if err != nil {
			continue
		}
		candidate := time.Date(now.Year(), now.Month(), now.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.Add(24 * time.Hour)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next, !next.IsZero()
}
