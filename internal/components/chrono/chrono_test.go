package chrono

import (
	"covidwatch/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImplNow(t *testing.T) {
	before := time.Now().UnixMilli()
	now := UnixMilli(NewStandardImpl())
	after := time.Now().UnixMilli()

	require.GreaterOrEqual(t, now, before)
	require.LessOrEqual(t, now, after)
}

func TestCronRejectsInvalidSchedule(t *testing.T) {
	cron := NewStandardCron(telemetry.NewSlogAPI(nil))
	defer cron.Stop()

	require.Error(t, cron.Cron("every now and then", func() {}))
	require.NoError(t, cron.Cron("*/5 * * * *", func() {}))
	require.NoError(t, cron.Cron("@every 1h", func() {}))
}

func TestCronRunsJob(t *testing.T) {
	cron := NewStandardCron(telemetry.NewSlogAPI(nil))

	ran := make(chan struct{}, 1)
	err := cron.Cron("@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-ran:
	case <-time.After(time.Second * 5):
		t.Fatal("job did not run")
	}
	<-cron.Stop().Done()
}
