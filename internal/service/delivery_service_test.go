package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/repository"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
)

func newDeliveryService(store DeliveryStore, actor domain.Actor) *deliveryService {
	svc := NewDeliveryService(store, actor).(*deliveryService)
	svc.clock = fixedClock
	return svc
}

func newReminderService(store DeliveryStore, n Notifier) *reminderService {
	svc := NewReminderService(store, n, nil).(*reminderService)
	svc.clock = fixedClock
	return svc
}

func TestDeliveryService_CreateAndDerivedStatus(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newDeliveryService(repository.NewSQLiteDeliveryRepo(database), fieldUser)
	ctx := context.Background()

	yesterday := testNow.AddDate(0, 0, -1)
	late, err := svc.Create(ctx, &domain.Delivery{ProjectID: "p1", SupplierName: "Ready Mix", EstimatedArrival: &yesterday})
	require.NoError(t, err)
	assert.Equal(t, fieldUser.UserID, late.CreatedByID)

	soon := testNow.Add(20 * time.Hour)
	_, err = svc.Create(ctx, &domain.Delivery{ProjectID: "p1", SupplierName: "Steel Co", EstimatedArrival: &soon, IsReleased: true})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &domain.Delivery{ProjectID: "p1"})
	assert.True(t, domain.IsValidation(err))

	views, err := svc.List(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, domain.DeliveryLate, views[0].Status)
	assert.Equal(t, domain.DeliveryInTransit, views[1].Status)
	assert.True(t, views[1].ArrivingSoon)

	delivered, err := svc.MarkDelivered(ctx, late.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	view, err := svc.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDelivered, view.Status)

	_, err = svc.MarkDelivered(ctx, late.ID)
	assert.True(t, domain.IsInvalidTransition(err))
}

func TestDeliveryService_DeleteOnlyByCreator(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := repository.NewSQLiteDeliveryRepo(database)
	ctx := context.Background()

	d, err := newDeliveryService(store, fieldUser).Create(ctx, &domain.Delivery{ProjectID: "p1", SupplierName: "Lumber Yard"})
	require.NoError(t, err)

	err = newDeliveryService(store, pmUser).Delete(ctx, d.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	require.NoError(t, newDeliveryService(store, fieldUser).Delete(ctx, d.ID))
	_, err = store.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReminderService_FiresOnce(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := repository.NewSQLiteDeliveryRepo(database)
	ctx := context.Background()
	d := testutil.NewTestDelivery("p1", "Steel Co", testutil.WithNotify24h(), testutil.WithETA(testNow.Add(20*time.Hour)))
	require.NoError(t, store.Create(ctx, d))

	notifier := &recordingNotifier{}
	svc := newReminderService(store, notifier)

	res, err := svc.EvaluateReminders(ctx, "p1", testNow)
	require.NoError(t, err)
	require.Len(t, res.Fired, 1)
	assert.Equal(t, d.ID, res.Fired[0].DeliveryID)

	stored, err := store.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.NotificationSent)

	for _, now := range []time.Time{testNow, testNow.Add(time.Hour), testNow.Add(19 * time.Hour)} {
		res, err := svc.EvaluateReminders(ctx, "", now)
		require.NoError(t, err)
		assert.Empty(t, res.Fired)
	}
	assert.Equal(t, 1, notifier.count())
}

func TestReminderService_RescheduleKeepsLatch(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := repository.NewSQLiteDeliveryRepo(database)
	ctx := context.Background()
	d := testutil.NewTestDelivery("p1", "Glass Co", testutil.WithNotify24h(), testutil.WithETA(testNow.Add(10*time.Hour)))
	require.NoError(t, store.Create(ctx, d))

	notifier := &recordingNotifier{}
	reminders := newReminderService(store, notifier)
	_, err := reminders.EvaluateReminders(ctx, "", testNow)
	require.NoError(t, err)

	_, err = newDeliveryService(store, fieldUser).Reschedule(ctx, d.ID, testNow.Add(30*time.Hour))
	require.NoError(t, err)

	res, err := reminders.EvaluateReminders(ctx, "p1", testNow.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, res.Fired)
	assert.Equal(t, 1, notifier.count())
}

func TestReminderService_SkipsOutsideWindow(t *testing.T) {
	cases := []struct {
		name string
		d    *domain.Delivery
	}{
		{"not opted in", testutil.NewTestDelivery("p1", "A", testutil.WithETA(testNow.Add(2*time.Hour)))},
		{"too far out", testutil.NewTestDelivery("p1", "B", testutil.WithNotify24h(), testutil.WithETA(testNow.Add(25*time.Hour)))},
		{"already passed", testutil.NewTestDelivery("p1", "C", testutil.WithNotify24h(), testutil.WithETA(testNow.Add(-time.Hour)))},
		{"delivered", testutil.NewTestDelivery("p1", "D", testutil.WithNotify24h(), testutil.WithDelivered(), testutil.WithETA(testNow.Add(time.Hour)))},
		{"no eta", testutil.NewTestDelivery("p1", "E", testutil.WithNotify24h())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			database := testutil.NewTestDB(t)
			store := repository.NewSQLiteDeliveryRepo(database)
			require.NoError(t, store.Create(context.Background(), tc.d))

			notifier := &recordingNotifier{}
			res, err := newReminderService(store, notifier).EvaluateReminders(context.Background(), "p1", testNow)
			require.NoError(t, err)
			assert.Empty(t, res.Fired)
			assert.Zero(t, notifier.count())
		})
	}
}

func TestReminderService_ConcurrentEvaluatorsFireOnce(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	d := testutil.NewTestDelivery("p1", "Rebar Inc", testutil.WithNotify24h(), testutil.WithETA(testNow.Add(3*time.Hour)))
	require.NoError(t, repository.NewSQLiteDeliveryRepo(database).Create(ctx, d))

	notifier := &recordingNotifier{}
	const workers = 6
	var wg sync.WaitGroup
	results := make([]*app.ReminderResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every evaluator loaded the delivery before any latch was set.
			snapshot := *d
			svc := newReminderService(repository.NewSQLiteDeliveryRepo(database), notifier)
			results[i], errs[i] = svc.EvaluateDeliveries(ctx, []*domain.Delivery{&snapshot}, testNow.Add(time.Duration(i)*time.Minute))
		}(i)
	}
	wg.Wait()

	fired, skipped := 0, 0
	for i := range results {
		require.NoError(t, errs[i])
		fired += len(results[i].Fired)
		skipped += results[i].Skipped
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, workers-1, skipped)
	assert.Equal(t, 1, notifier.count())
}
