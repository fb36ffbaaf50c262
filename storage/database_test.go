package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/digitbot/core"
	"github.com/web3guy0/digitbot/types"
)

var _ core.SettlementSink = (*Journal)(nil)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	j, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func contract(session string, opened time.Time) types.Contract {
	return types.Contract{
		ID:         uuid.NewString(),
		SessionID:  session,
		Symbol:     "R_100",
		Type:       "DIGITDIFF",
		Prediction: 3,
		Stake:      decimal.RequireFromString("0.35"),
		Payout:     0.10,
		Confidence: 0.85,
		Reason:     "Digit 3 cold (0.0%), unlikely to appear",
		OpenedAt:   opened,
	}
}

func settlement(c types.Contract, won bool, profit string, at time.Time) types.Settlement {
	p := decimal.RequireFromString(profit)
	return types.Settlement{
		Contract:  c,
		ExitPrice: 100.07,
		ExitDigit: 7,
		Won:       won,
		Profit:    p,
		SettledAt: at,
		Trade: types.TradeRecord{
			ID:            uuid.NewString(),
			Timestamp:     at,
			Stake:         c.Stake,
			Profit:        p,
			IsWin:         won,
			BalanceBefore: decimal.NewFromInt(10),
			BalanceAfter:  decimal.NewFromInt(10).Add(p),
			IsRecovery:    !won,
		},
	}
}

func TestJournal_ContractLifecycle(t *testing.T) {
	j := openMemory(t)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	c := contract("session-a", now)
	require.NoError(t, j.SaveContract(c))

	open, err := j.OpenContracts("session-a")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, c.ID, open[0].ID)
	assert.Equal(t, StatusOpen, open[0].Status)
	assert.Equal(t, "0.35", open[0].Stake.StringFixed(2))

	require.NoError(t, j.SaveSettlement(settlement(c, true, "0.04", now.Add(time.Second))))

	open, err = j.OpenContracts("session-a")
	require.NoError(t, err)
	assert.Empty(t, open)

	entry, err := j.GetContract(c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, entry.Status)
	require.NotNil(t, entry.ExitDigit)
	assert.Equal(t, 7, *entry.ExitDigit)
	assert.Equal(t, "0.04", entry.Profit.StringFixed(2))
	require.NotNil(t, entry.SettledAt)
}

func TestJournal_SettleUnknownContract(t *testing.T) {
	j := openMemory(t)
	now := time.Now()

	err := j.SaveSettlement(settlement(contract("session-a", now), false, "-0.35", now))
	assert.ErrorIs(t, err, ErrContractNotFound)

	trades, err := j.RecentTrades(10)
	require.NoError(t, err)
	assert.Empty(t, trades, "transaction rolled back")

	_, err = j.GetContract("missing")
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestJournal_RecentTradesAndStats(t *testing.T) {
	j := openMemory(t)
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	type trade struct {
		session string
		won     bool
		profit  string
	}
	trades := []trade{
		{"session-a", true, "0.04"},
		{"session-a", false, "-0.35"},
		{"session-a", true, "0.60"},
		{"session-b", false, "-0.35"},
	}

	ids := make([]string, len(trades))
	for i, tr := range trades {
		at := start.Add(time.Duration(i) * time.Minute)
		c := contract(tr.session, at)
		require.NoError(t, j.SaveContract(c))
		s := settlement(c, tr.won, tr.profit, at.Add(time.Second))
		require.NoError(t, j.SaveSettlement(s))
		ids[i] = s.Trade.ID
	}

	recent, err := j.RecentTrades(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[3], recent[0].ID)
	assert.Equal(t, ids[2], recent[1].ID)
	assert.Equal(t, "-0.35", recent[0].Profit.StringFixed(2))
	assert.Equal(t, "9.65", recent[0].BalanceAfter.StringFixed(2))
	assert.True(t, recent[0].IsRecovery)

	stats, err := j.SessionStats("session-a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Trades)
	assert.Equal(t, int64(2), stats.Wins)
	assert.Equal(t, int64(1), stats.Losses)
	assert.Equal(t, "0.29", stats.Profit.StringFixed(2))

	empty, err := j.SessionStats("unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Trades)
	assert.True(t, empty.Profit.IsZero())
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.SaveContract(contract("s", time.Now())))
	require.NoError(t, j.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	open, err := reopened.OpenContracts("s")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}
