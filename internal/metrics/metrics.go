package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/strategy"
)

// Recorder exposes strategy and money manager activity as Prometheus metrics.
type Recorder struct {
	registry *prometheus.Registry

	ticksTotal     *prometheus.CounterVec
	signalsTotal   *prometheus.CounterVec
	tradesTotal    *prometheus.CounterVec
	recoveryEvents *prometheus.CounterVec
	digitFrequency *prometheus.GaugeVec
	balance        prometheus.Gauge
	recoveryLevel  prometheus.Gauge
	deficit        prometheus.Gauge
	stake          prometheus.Histogram
}

// New creates a recorder on its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		ticksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digitbot_ticks_total",
				Help: "Total number of ticks seen by the strategy",
			},
			[]string{"result"},
		),
		signalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digitbot_signals_total",
				Help: "Total number of best signals produced by analysis",
			},
			[]string{"contract"},
		),
		tradesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digitbot_trades_total",
				Help: "Total number of settled trades",
			},
			[]string{"result"},
		),
		recoveryEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digitbot_recovery_events_total",
				Help: "Money manager events by kind",
			},
			[]string{"kind"},
		),
		digitFrequency: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "digitbot_digit_frequency",
				Help: "Observed last-digit frequency at the latest analysis",
			},
			[]string{"digit"},
		),
		balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "digitbot_balance",
			Help: "Current paper balance",
		}),
		recoveryLevel: factory.NewGauge(prometheus.GaugeOpts{
			Name: "digitbot_recovery_level",
			Help: "Current recovery level (0 when not recovering)",
		}),
		deficit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "digitbot_recovery_deficit",
			Help: "Outstanding deficit being recovered",
		}),
		stake: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "digitbot_stake",
			Help:    "Stake of settled trades",
			Buckets: []float64{0.35, 0.5, 1, 2, 5, 10, 25, 50},
		}),
	}
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// StrategyObserver records tick and analysis events
func (r *Recorder) StrategyObserver() strategy.Observer {
	return func(e strategy.Event) {
		switch e.Kind {
		case strategy.EventTick:
			r.ticksTotal.WithLabelValues("accepted").Inc()
		case strategy.EventRejected:
			r.ticksTotal.WithLabelValues("rejected").Inc()
		case strategy.EventAnalysis:
			if e.Result == nil {
				return
			}
			for d, f := range e.Result.Frequencies {
				r.digitFrequency.WithLabelValues(strconv.Itoa(d)).Set(f)
			}
			if e.Result.Best != nil {
				r.signalsTotal.WithLabelValues(e.Result.Best.Contract.String()).Inc()
			}
		}
	}
}

// RiskObserver records trades, balance and recovery state
func (r *Recorder) RiskObserver() risk.Observer {
	return func(e risk.Event) {
		r.balance.Set(e.Balance.InexactFloat64())

		switch e.Kind {
		case risk.EventCreated, risk.EventSessionReset:
			r.recoveryLevel.Set(0)
			r.deficit.Set(0)
		case risk.EventTradeRecorded:
			if e.Trade == nil {
				return
			}
			result := "loss"
			if e.Trade.IsWin {
				result = "win"
			}
			r.tradesTotal.WithLabelValues(result).Inc()
			r.stake.Observe(e.Stake.InexactFloat64())
			r.recoveryLevel.Set(float64(e.Trade.RecoveryLevel))
			r.deficit.Set(e.Trade.Deficit.InexactFloat64())
		case risk.EventBalanceUpdated, risk.EventLevelChanged, risk.EventProfitTarget:
		default:
			r.recoveryEvents.WithLabelValues(string(e.Kind)).Inc()
		}
	}
}
