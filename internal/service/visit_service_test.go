package service

import (
	"context"
	"testing"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type visitFixture struct {
	md        *repository.MemorySchedulesRepository
	sales     *repository.MemorySchedulesRepository
	outlets   *repository.MemoryOutletsRepository
	assignees *repository.MemoryAssigneesRepository
	actions   *repository.MemoryActionsRepository
	svc       VisitService
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()
	f := &visitFixture{
		md:        repository.NewMemorySchedulesRepository(),
		sales:     repository.NewMemorySchedulesRepository(),
		outlets:   repository.NewMemoryOutletsRepository(),
		assignees: repository.NewMemoryAssigneesRepository(),
		actions:   repository.NewMemoryActionsRepository(),
	}
	f.svc = NewVisitService(f.md, f.sales, f.outlets, f.assignees, f.actions, zap.NewNop())
	return f
}

// seedVisit plants the outlet, assignee and one md schedule, returning the
// schedule id.
func (f *visitFixture) seedVisit(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()

	err := f.outlets.Upsert(ctx, &domain.Outlet{
		Username:   "u1",
		AreaCode:   "AMO-1",
		DepotCode:  "WH-1",
		OutletCode: "OUT-1",
		Name:       "Toko Maju",
		Address:    "Jl. Sudirman 1",
		Latitude:   -6.2,
		Longitude:  106.8,
	})
	require.NoError(t, err)

	_, err = f.assignees.Create(ctx, &domain.Assignee{
		Username: "u1",
		Name:     "Udin Satu",
		Role:     "MD",
	})
	require.NoError(t, err)

	id, err := f.md.Create(ctx, &domain.VisitSchedule{
		Username:   "u1",
		AreaCode:   "AMO-1",
		DepotCode:  "WH-1",
		OutletCode: "OUT-1",
		OutletName: "Toko Maju",
		VisitDate:  "2025-01-10",
	})
	require.NoError(t, err)
	return id
}

func (f *visitFixture) checkIn(t *testing.T, scheduleID int64) int64 {
	t.Helper()
	resp, err := f.svc.CheckIn(context.Background(), CheckInRequest{
		ScheduleID: scheduleID,
		RoleType:   domain.RoleMD,
		Latitude:   -6.2002,
		Longitude:  106.8001,
	})
	require.NoError(t, err)
	return resp.ActionID
}

func TestEligibleVisitsMergesRoleCollections(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	f.seedVisit(t)

	_, err := f.sales.Create(ctx, &domain.VisitSchedule{
		Username:   "u1",
		OutletCode: "OUT-2",
		OutletName: "Toko Lain",
		VisitDate:  "2025-01-10",
	})
	require.NoError(t, err)

	visits, err := f.svc.EligibleVisits(ctx, EligibleVisitsRequest{Username: "u1", VisitDate: "2025-01-10"})
	require.NoError(t, err)
	require.Len(t, visits, 2)

	roles := map[domain.RoleType]string{}
	for _, v := range visits {
		roles[v.RoleType] = v.OutletCode
	}
	require.Equal(t, "OUT-1", roles[domain.RoleMD])
	require.Equal(t, "OUT-2", roles[domain.RoleSales])
}

func TestEligibleVisitsExcludesCompleted(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	id := f.seedVisit(t)

	require.NoError(t, f.md.Complete(ctx, id))

	visits, err := f.svc.EligibleVisits(ctx, EligibleVisitsRequest{Username: "u1", VisitDate: "2025-01-10"})
	require.NoError(t, err)
	require.Empty(t, visits)
}

func TestCheckInCreatesSnapshot(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	id := f.seedVisit(t)

	resp, err := f.svc.CheckIn(ctx, CheckInRequest{
		ScheduleID: id,
		RoleType:   domain.RoleMD,
		Latitude:   -6.2002,
		Longitude:  106.8001,
	})
	require.NoError(t, err)
	require.NotZero(t, resp.ActionID)
	require.Equal(t, "OUT-1", resp.Outlet.OutletCode)
	require.Equal(t, "Toko Maju", resp.Outlet.Name)
	require.True(t, resp.WithinRadius)
	require.Less(t, resp.DistanceMeters, domain.CheckInRadiusMeters)

	action, err := f.actions.Get(ctx, resp.ActionID)
	require.NoError(t, err)
	require.Equal(t, id, action.ScheduleID)
	require.Equal(t, domain.RoleMD, action.RoleType)
	require.Equal(t, "u1", action.Username)
	require.Equal(t, "Udin Satu", action.AssigneeName)
	require.Equal(t, "OUT-1", action.OutletCode)
	require.Equal(t, -6.2, action.OutletLatitude)
	require.Equal(t, 106.8, action.OutletLongitude)
	require.True(t, action.CheckInTime.Valid)
	require.False(t, action.Completed())
}

func TestCheckInOutsideRadiusStillSucceeds(t *testing.T) {
	f := newVisitFixture(t)
	id := f.seedVisit(t)

	// ~1.1 km away: the server reports the distance but does not gate on it.
	resp, err := f.svc.CheckIn(context.Background(), CheckInRequest{
		ScheduleID: id,
		RoleType:   domain.RoleMD,
		Latitude:   -6.21,
		Longitude:  106.8,
	})
	require.NoError(t, err)
	require.False(t, resp.WithinRadius)
	require.Greater(t, resp.DistanceMeters, domain.CheckInRadiusMeters)
}

func TestCheckInMissingSchedule(t *testing.T) {
	f := newVisitFixture(t)

	_, err := f.svc.CheckIn(context.Background(), CheckInRequest{
		ScheduleID: 99,
		RoleType:   domain.RoleMD,
		Latitude:   -6.2,
		Longitude:  106.8,
	})
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestCheckInMissingOutlet(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()

	id, err := f.md.Create(ctx, &domain.VisitSchedule{
		Username:   "u1",
		OutletCode: "GONE",
		OutletName: "Missing",
		VisitDate:  "2025-01-10",
	})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, CheckInRequest{
		ScheduleID: id,
		RoleType:   domain.RoleMD,
		Latitude:   -6.2,
		Longitude:  106.8,
	})
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestCheckInInvalidInput(t *testing.T) {
	f := newVisitFixture(t)
	id := f.seedVisit(t)

	var ve *ValidationError
	_, err := f.svc.CheckIn(context.Background(), CheckInRequest{
		ScheduleID: id, RoleType: "driver", Latitude: -6.2, Longitude: 106.8,
	})
	require.ErrorAs(t, err, &ve)

	_, err = f.svc.CheckIn(context.Background(), CheckInRequest{
		ScheduleID: id, RoleType: domain.RoleMD, Latitude: 91, Longitude: 106.8,
	})
	require.ErrorAs(t, err, &ve)
}

func TestPhotoSlotLastWriteWins(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	actionID := f.checkIn(t, f.seedVisit(t))

	_, err := f.svc.AttachPhoto(ctx, AttachPhotoRequest{ActionID: actionID, Slot: domain.PhotoBefore, Path: "images/a.jpg"})
	require.NoError(t, err)
	action, err := f.svc.AttachPhoto(ctx, AttachPhotoRequest{ActionID: actionID, Slot: domain.PhotoBefore, Path: "images/b.jpg"})
	require.NoError(t, err)

	require.Equal(t, "images/b.jpg", action.PhotoBefore.String)
	require.False(t, action.PhotoAfter.Valid)
}

func TestClassificationClosedSet(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	actionID := f.checkIn(t, f.seedVisit(t))

	var ve *ValidationError
	_, err := f.svc.Classify(ctx, ClassifyRequest{ActionID: actionID, Classification: "vandalized"})
	require.ErrorAs(t, err, &ve)

	action, err := f.svc.Classify(ctx, ClassifyRequest{ActionID: actionID, Classification: domain.ClassificationStoreClosed})
	require.NoError(t, err)
	require.Equal(t, string(domain.ClassificationStoreClosed), action.Classification.String)

	// Overwriting with another legal value is allowed.
	action, err = f.svc.Classify(ctx, ClassifyRequest{ActionID: actionID, Classification: domain.ClassificationInstalled})
	require.NoError(t, err)
	require.Equal(t, string(domain.ClassificationInstalled), action.Classification.String)
}

func TestCheckOutGatesCheckedIndependently(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	out := CheckOutRequest{Latitude: -6.2, Longitude: 106.8}

	t.Run("missing action", func(t *testing.T) {
		out := out
		out.ActionID = 42
		var nfe *NotFoundError
		_, err := f.svc.CheckOut(ctx, out)
		require.ErrorAs(t, err, &nfe)
	})

	t.Run("no photos", func(t *testing.T) {
		out := out
		out.ActionID = f.checkIn(t, f.seedVisit(t))
		var pe *PreconditionError
		_, err := f.svc.CheckOut(ctx, out)
		require.ErrorAs(t, err, &pe)
		require.Equal(t, "documentation missing", pe.Error())
	})

	t.Run("one photo only", func(t *testing.T) {
		f := newVisitFixture(t)
		out := out
		out.ActionID = f.checkIn(t, f.seedVisit(t))
		_, err := f.svc.AttachPhoto(ctx, AttachPhotoRequest{ActionID: out.ActionID, Slot: domain.PhotoBefore, Path: "images/a.jpg"})
		require.NoError(t, err)

		var pe *PreconditionError
		_, err = f.svc.CheckOut(ctx, out)
		require.ErrorAs(t, err, &pe)
		require.Equal(t, "documentation missing", pe.Error())
	})

	t.Run("no classification", func(t *testing.T) {
		f := newVisitFixture(t)
		out := out
		out.ActionID = f.checkIn(t, f.seedVisit(t))
		for _, slot := range []domain.PhotoSlot{domain.PhotoBefore, domain.PhotoAfter} {
			_, err := f.svc.AttachPhoto(ctx, AttachPhotoRequest{ActionID: out.ActionID, Slot: slot, Path: "images/x.jpg"})
			require.NoError(t, err)
		}

		var pe *PreconditionError
		_, err := f.svc.CheckOut(ctx, out)
		require.ErrorAs(t, err, &pe)
		require.Equal(t, "classification missing", pe.Error())
	})
}

func completeDocumentation(t *testing.T, f *visitFixture, actionID int64) {
	t.Helper()
	ctx := context.Background()
	for _, slot := range []domain.PhotoSlot{domain.PhotoBefore, domain.PhotoAfter} {
		_, err := f.svc.AttachPhoto(ctx, AttachPhotoRequest{ActionID: actionID, Slot: slot, Path: "images/x.jpg"})
		require.NoError(t, err)
	}
	_, err := f.svc.Classify(ctx, ClassifyRequest{ActionID: actionID, Classification: domain.ClassificationInstalled})
	require.NoError(t, err)
}

func TestCheckOutCompletesActionAndSchedule(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	scheduleID := f.seedVisit(t)
	actionID := f.checkIn(t, scheduleID)
	completeDocumentation(t, f, actionID)

	action, err := f.svc.CheckOut(ctx, CheckOutRequest{ActionID: actionID, Latitude: -6.2001, Longitude: 106.8})
	require.NoError(t, err)
	require.True(t, action.Completed())
	require.True(t, action.CheckOutLatitude.Valid)

	schedule, err := f.md.Get(ctx, scheduleID)
	require.NoError(t, err)
	require.Equal(t, domain.ScheduleStatusCompleted, schedule.Status)

	// The sales collection is untouched.
	scheduled, completed, err := f.sales.CountByStatus(ctx)
	require.NoError(t, err)
	require.Zero(t, scheduled)
	require.Zero(t, completed)
}

func TestCheckOutTwiceRejected(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	actionID := f.checkIn(t, f.seedVisit(t))
	completeDocumentation(t, f, actionID)

	_, err := f.svc.CheckOut(ctx, CheckOutRequest{ActionID: actionID, Latitude: -6.2, Longitude: 106.8})
	require.NoError(t, err)

	var pe *PreconditionError
	_, err = f.svc.CheckOut(ctx, CheckOutRequest{ActionID: actionID, Latitude: -6.2, Longitude: 106.8})
	require.ErrorAs(t, err, &pe)
}

func TestCheckOutSurvivesDeletedSchedule(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	scheduleID := f.seedVisit(t)
	actionID := f.checkIn(t, scheduleID)
	completeDocumentation(t, f, actionID)

	require.NoError(t, f.md.Delete(ctx, scheduleID))

	// The audit record stands alone: check-out still completes.
	action, err := f.svc.CheckOut(ctx, CheckOutRequest{ActionID: actionID, Latitude: -6.2, Longitude: 106.8})
	require.NoError(t, err)
	require.True(t, action.Completed())
}

func TestListActionsCompletionFilter(t *testing.T) {
	f := newVisitFixture(t)
	ctx := context.Background()
	scheduleID := f.seedVisit(t)

	first := f.checkIn(t, scheduleID)
	completeDocumentation(t, f, first)
	_, err := f.svc.CheckOut(ctx, CheckOutRequest{ActionID: first, Latitude: -6.2, Longitude: 106.8})
	require.NoError(t, err)

	second := f.checkIn(t, scheduleID)

	completed, err := f.svc.ListActions(ctx, repository.ActionFilters{Completion: repository.CompletionCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, first, completed[0].ID)

	inProgress, err := f.svc.ListActions(ctx, repository.ActionFilters{Completion: repository.CompletionInProgress})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	require.Equal(t, second, inProgress[0].ID)
}
