package api

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/debt/store"
	"github.com/warp/debt-engine/logging"
)

func dueOn(name string, day int) debt.NewDebt {
	return debt.NewDebt{
		Name:           name,
		Type:           debt.TypeCreditCard,
		Balance:        debt.MustParse("500.00"),
		InterestRate:   debt.MustParse("19.99"),
		MinimumPayment: debt.MustParse("25.00"),
		DueDay:         &day,
	}
}

func newSchedulerFixture(t *testing.T) (*DueSoonScheduler, *debt.Service, *bytes.Buffer) {
	t.Helper()
	mem := store.NewMemory()
	svc := debt.NewService(mem, mem, mem)
	svc.Now = func() time.Time { return march15 }

	var buf bytes.Buffer
	logger := logging.New(logging.Config{Output: &buf})
	return NewDueSoonScheduler(svc, logger), svc, &buf
}

func TestDueSoonScheduler_RunNow_ScansEveryOwner(t *testing.T) {
	sched, svc, buf := newSchedulerFixture(t)
	ctx := context.Background()

	// GIVEN: Owner 1 has a debt due today; owner 2 one due in two days and
	// one outside the window
	_, err := svc.Create(ctx, 1, dueOn("Visa", 15))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, dueOn("Amex", 17))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, dueOn("Store Card", 25))
	require.NoError(t, err)

	// WHEN: A scan runs
	run := sched.RunNow(ctx)

	// THEN: Both owners are scanned and two reminders are logged
	assert.Equal(t, 2, run.Owners)
	assert.Equal(t, 2, run.Due)
	assert.Equal(t, 0, run.Failed)
	assert.Contains(t, buf.String(), "payment due soon")
	assert.Contains(t, buf.String(), "name=Amex")
	assert.Contains(t, buf.String(), "component=scheduler")
	assert.NotContains(t, buf.String(), "Store Card")

	last := sched.LastRun()
	require.NotNil(t, last)
	assert.Equal(t, 2, last.Due)
}

func TestDueSoonScheduler_NoOwners(t *testing.T) {
	sched, _, _ := newSchedulerFixture(t)
	assert.Nil(t, sched.LastRun())

	run := sched.RunNow(context.Background())
	assert.Equal(t, 0, run.Owners)
	assert.NotNil(t, sched.LastRun())
}

func TestDueSoonScheduler_StartStop(t *testing.T) {
	sched, _, buf := newSchedulerFixture(t)
	sched.CheckInterval = time.Hour

	sched.Start()
	sched.Stop()

	// Start runs one scan immediately, and Stop waits for it
	assert.NotNil(t, sched.LastRun())
	assert.Contains(t, buf.String(), "scheduler stopped")

	// A second Stop is a no-op
	sched.Stop()
}

func TestDueSoonScheduler_Disabled(t *testing.T) {
	sched, _, buf := newSchedulerFixture(t)
	sched.Enabled = false

	sched.Start()
	sched.Stop()

	assert.Nil(t, sched.LastRun())
	assert.Contains(t, buf.String(), "scheduler disabled")
}
