package metrics

import (
	"io"
	"math"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/strategy"
)

func TestRecorder_StrategyObserver(t *testing.T) {
	rec := New()
	dp := strategy.NewDigitPad(strategy.WithObserver(rec.StrategyObserver()))

	evens := []int{0, 2, 4, 6, 8}
	for i := 0; i < strategy.MinTicksRequired; i++ {
		dp.AddTick(100 + float64(evens[i%len(evens)])/100)
	}
	dp.AddTick(math.NaN())
	_, ok := dp.Analyze()
	require.True(t, ok)

	assert.Equal(t, float64(strategy.MinTicksRequired), testutil.ToFloat64(rec.ticksTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ticksTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.signalsTotal.WithLabelValues("DIGITDIFF")))
	assert.Equal(t, 0.2, testutil.ToFloat64(rec.digitFrequency.WithLabelValues("4")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.digitFrequency.WithLabelValues("5")))
}

func TestRecorder_RiskObserver(t *testing.T) {
	rec := New()
	m, err := risk.NewRecoveryManager(risk.DefaultConfig(decimal.NewFromInt(10)), risk.WithObserver(rec.RiskObserver()))
	require.NoError(t, err)
	assert.Equal(t, 10.0, testutil.ToFloat64(rec.balance))

	m.RecordTrade(decimal.RequireFromString("0.35"), decimal.RequireFromString("-0.35"), false)
	m.RecordTrade(decimal.RequireFromString("0.63"), decimal.RequireFromString("-0.63"), false)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.tradesTotal.WithLabelValues("loss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recoveryLevel))
	assert.InDelta(t, 0.98, testutil.ToFloat64(rec.deficit), 1e-9)
	assert.InDelta(t, 9.02, testutil.ToFloat64(rec.balance), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recoveryEvents.WithLabelValues(string(risk.EventRecoveryStarted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recoveryEvents.WithLabelValues(string(risk.EventRecoveryEscalated))))

	m.RecordTrade(decimal.RequireFromString("1.20"), decimal.RequireFromString("1.14"), true)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.tradesTotal.WithLabelValues("win")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.recoveryLevel))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.deficit))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recoveryEvents.WithLabelValues(string(risk.EventRecoveryCompleted))))

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	var stakes uint64
	for _, mf := range families {
		if mf.GetName() == "digitbot_stake" {
			stakes = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(3), stakes)
}

func TestRecorder_Handler(t *testing.T) {
	rec := New()
	rec.StrategyObserver()(strategy.Event{Kind: strategy.EventTick})

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `digitbot_ticks_total{result="accepted"} 1`)
	assert.Contains(t, string(body), "digitbot_balance")
}
