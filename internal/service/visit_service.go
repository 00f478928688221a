package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"

	"go.uber.org/zap"
)

// VisitService drives the visit execution state machine:
// check-in -> documentation photos -> classification -> check-out.
type VisitService interface {
	// EligibleVisits returns the still-scheduled rows for an assignee on a
	// date, merged from both role collections.
	EligibleVisits(ctx context.Context, req EligibleVisitsRequest) ([]*ScheduledVisit, error)

	CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResponse, error)
	AttachPhoto(ctx context.Context, req AttachPhotoRequest) (*domain.VisitAction, error)
	Classify(ctx context.Context, req ClassifyRequest) (*domain.VisitAction, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (*domain.VisitAction, error)

	ListActions(ctx context.Context, filters repository.ActionFilters) ([]*domain.VisitAction, error)
	GetAction(ctx context.Context, id int64) (*domain.VisitAction, error)
}

type visitService struct {
	mdSchedules    repository.SchedulesRepository
	salesSchedules repository.SchedulesRepository
	outletsRepo    repository.OutletsRepository
	assigneesRepo  repository.AssigneesRepository
	actionsRepo    repository.ActionsRepository
	logger         *zap.Logger
}

func NewVisitService(
	mdSchedules, salesSchedules repository.SchedulesRepository,
	outletsRepo repository.OutletsRepository,
	assigneesRepo repository.AssigneesRepository,
	actionsRepo repository.ActionsRepository,
	logger *zap.Logger,
) VisitService {
	return &visitService{
		mdSchedules:    mdSchedules,
		salesSchedules: salesSchedules,
		outletsRepo:    outletsRepo,
		assigneesRepo:  assigneesRepo,
		actionsRepo:    actionsRepo,
		logger:         logger,
	}
}

type EligibleVisitsRequest struct {
	Username  string
	VisitDate string // YYYY-MM-DD
}

// ScheduledVisit is a schedule row tagged with the role collection it came
// from, so the client can route the later check-in to the right collection.
type ScheduledVisit struct {
	*domain.VisitSchedule
	RoleType domain.RoleType
}

func (v *ScheduledVisit) ToJSON() map[string]any {
	m := v.VisitSchedule.ToJSON()
	m["role_type"] = string(v.RoleType)
	return m
}

type CheckInRequest struct {
	ScheduleID int64
	RoleType   domain.RoleType
	Latitude   float64
	Longitude  float64
}

// CheckInResponse carries the new action id, the outlet snapshot frozen into
// the action, and the measured distance. Distance is informational: the
// mobile client enforces the geofence before calling, the server does not.
type CheckInResponse struct {
	ActionID       int64
	Outlet         *domain.Outlet
	DistanceMeters float64
	WithinRadius   bool
}

type AttachPhotoRequest struct {
	ActionID int64
	Slot     domain.PhotoSlot
	Path     string
}

type ClassifyRequest struct {
	ActionID       int64
	Classification domain.Classification
}

type CheckOutRequest struct {
	ActionID  int64
	Latitude  float64
	Longitude float64
}

func (s *visitService) schedulesFor(rt domain.RoleType) repository.SchedulesRepository {
	if rt == domain.RoleSales {
		return s.salesSchedules
	}
	return s.mdSchedules
}

func (s *visitService) EligibleVisits(ctx context.Context, req EligibleVisitsRequest) ([]*ScheduledVisit, error) {
	if req.Username == "" {
		return nil, NewValidationError("username is required")
	}
	if req.VisitDate == "" {
		return nil, NewValidationError("visit_date is required")
	}

	filters := repository.ScheduleFilters{
		Username:  req.Username,
		VisitDate: req.VisitDate,
		Status:    domain.ScheduleStatusScheduled,
	}

	md, err := s.mdSchedules.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list md schedules: %w", err)
	}
	sales, err := s.salesSchedules.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list sales schedules: %w", err)
	}

	out := make([]*ScheduledVisit, 0, len(md)+len(sales))
	for _, v := range md {
		out = append(out, &ScheduledVisit{VisitSchedule: v, RoleType: domain.RoleMD})
	}
	for _, v := range sales {
		out = append(out, &ScheduledVisit{VisitSchedule: v, RoleType: domain.RoleSales})
	}
	return out, nil
}

func (s *visitService) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResponse, error) {
	if !req.RoleType.Valid() {
		return nil, NewValidationError("invalid role type %q", string(req.RoleType))
	}
	if !domain.ValidCoordinate(req.Latitude, req.Longitude) {
		return nil, NewValidationError("coordinates out of range")
	}

	schedule, err := s.schedulesFor(req.RoleType).Get(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("schedule %d not found", req.ScheduleID)
		}
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	outlet, err := s.outletsRepo.GetByCode(ctx, schedule.OutletCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("outlet %s not found", schedule.OutletCode)
		}
		return nil, fmt.Errorf("load outlet: %w", err)
	}

	// The store enforces no foreign keys, so the personnel record can be
	// missing. The snapshot then falls back to the schedule's username.
	assigneeName := schedule.Username
	if assignee, err := s.assigneesRepo.GetByUsername(ctx, schedule.Username); err == nil {
		assigneeName = assignee.Name
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load assignee: %w", err)
	}

	action := &domain.VisitAction{
		ScheduleID:       schedule.ID,
		RoleType:         req.RoleType,
		Username:         schedule.Username,
		AssigneeName:     assigneeName,
		AreaCode:         schedule.AreaCode,
		DepotCode:        schedule.DepotCode,
		OutletCode:       outlet.OutletCode,
		OutletName:       outlet.Name,
		OutletAddress:    outlet.Address,
		OutletLatitude:   outlet.Latitude,
		OutletLongitude:  outlet.Longitude,
		CheckInLatitude:  sql.NullFloat64{Float64: req.Latitude, Valid: true},
		CheckInLongitude: sql.NullFloat64{Float64: req.Longitude, Valid: true},
	}

	id, err := s.actionsRepo.Create(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("create visit action: %w", err)
	}

	distance := domain.Distance(req.Latitude, req.Longitude, outlet.Latitude, outlet.Longitude)
	within := domain.WithinCheckInRadius(req.Latitude, req.Longitude, outlet.Latitude, outlet.Longitude)

	s.logger.Info("visit check-in",
		zap.Int64("action_id", id),
		zap.Int64("schedule_id", schedule.ID),
		zap.String("role_type", string(req.RoleType)),
		zap.String("outlet_code", outlet.OutletCode),
		zap.Float64("distance_m", distance),
		zap.Bool("within_radius", within),
	)

	return &CheckInResponse{
		ActionID:       id,
		Outlet:         outlet,
		DistanceMeters: distance,
		WithinRadius:   within,
	}, nil
}

func (s *visitService) AttachPhoto(ctx context.Context, req AttachPhotoRequest) (*domain.VisitAction, error) {
	if !req.Slot.Valid() {
		return nil, NewValidationError("invalid photo slot %q", string(req.Slot))
	}
	if req.Path == "" {
		return nil, NewValidationError("photo file is required")
	}

	if _, err := s.getAction(ctx, req.ActionID); err != nil {
		return nil, err
	}

	if err := s.actionsRepo.SetPhoto(ctx, req.ActionID, req.Slot, req.Path); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("visit action %d not found", req.ActionID)
		}
		return nil, fmt.Errorf("set photo: %w", err)
	}
	return s.getAction(ctx, req.ActionID)
}

func (s *visitService) Classify(ctx context.Context, req ClassifyRequest) (*domain.VisitAction, error) {
	if !req.Classification.Valid() {
		return nil, NewValidationError("invalid classification %q", string(req.Classification))
	}

	if _, err := s.getAction(ctx, req.ActionID); err != nil {
		return nil, err
	}

	if err := s.actionsRepo.SetClassification(ctx, req.ActionID, req.Classification); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("visit action %d not found", req.ActionID)
		}
		return nil, fmt.Errorf("set classification: %w", err)
	}
	return s.getAction(ctx, req.ActionID)
}

// CheckOut gates completion on the preconditions in order: the action exists,
// check-in is stamped, both photo slots are set, a classification is set. The
// first unmet condition wins and is reported by name. The action write and
// the schedule status flip target different collections and are not atomic; a
// crash between them leaves a completed action against a still-scheduled row,
// which the sync pass surfaces.
func (s *visitService) CheckOut(ctx context.Context, req CheckOutRequest) (*domain.VisitAction, error) {
	if !domain.ValidCoordinate(req.Latitude, req.Longitude) {
		return nil, NewValidationError("coordinates out of range")
	}

	action, err := s.getAction(ctx, req.ActionID)
	if err != nil {
		return nil, err
	}

	if !action.CheckInTime.Valid {
		return nil, NewPreconditionError("check-in missing")
	}
	if !action.PhotoBefore.Valid || !action.PhotoAfter.Valid {
		return nil, NewPreconditionError("documentation missing")
	}
	if !action.Classification.Valid {
		return nil, NewPreconditionError("classification missing")
	}
	if action.CheckOutTime.Valid {
		return nil, NewPreconditionError("visit already checked out")
	}

	if err := s.actionsRepo.SetCheckOut(ctx, req.ActionID, req.Latitude, req.Longitude); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("visit action %d not found", req.ActionID)
		}
		return nil, fmt.Errorf("set check-out: %w", err)
	}

	if err := s.schedulesFor(action.RoleType).Complete(ctx, action.ScheduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The schedule row was deleted after check-in. The audit record
			// stands on its own, so the visit still completes.
			s.logger.Warn("check-out completed against missing schedule",
				zap.Int64("action_id", req.ActionID),
				zap.Int64("schedule_id", action.ScheduleID),
			)
		} else {
			return nil, fmt.Errorf("complete schedule: %w", err)
		}
	}

	s.logger.Info("visit check-out",
		zap.Int64("action_id", req.ActionID),
		zap.Int64("schedule_id", action.ScheduleID),
		zap.String("classification", action.Classification.String),
	)

	return s.getAction(ctx, req.ActionID)
}

func (s *visitService) ListActions(ctx context.Context, filters repository.ActionFilters) ([]*domain.VisitAction, error) {
	actions, err := s.actionsRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list visit actions: %w", err)
	}
	return actions, nil
}

func (s *visitService) GetAction(ctx context.Context, id int64) (*domain.VisitAction, error) {
	return s.getAction(ctx, id)
}

func (s *visitService) getAction(ctx context.Context, id int64) (*domain.VisitAction, error) {
	action, err := s.actionsRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("visit action %d not found", id)
		}
		return nil, fmt.Errorf("load visit action: %w", err)
	}
	return action, nil
}
