package bot

import (
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/digitbot/core"
	"github.com/web3guy0/digitbot/risk"
	"github.com/web3guy0/digitbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TELEGRAM BOT - Session notifications & control
// ═══════════════════════════════════════════════════════════════════════════════
//
// Features:
//   🔄 Recovery alerts (started/completed/max level)
//   ⛔ Stop advisories and profit target
//   📈 Session stats, recent trades, recovery plan
//   🎛️ Control commands (/pause, /resume)
//
// Outgoing messages are queued and sent from a single goroutine so money
// manager events never block on the network.
//
// ═══════════════════════════════════════════════════════════════════════════════

const outboxSize = 64

// Sender is the part of the Telegram API used for outgoing messages
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StatsProvider provides engine statistics
type StatsProvider interface {
	Snapshot() core.Snapshot
}

// MoneyProvider provides money manager reports
type MoneyProvider interface {
	Summary() string
	Preview(n int) []risk.PreviewLevel
	State() risk.RecoveryState
}

// TradeHistory provides recent journaled trades
type TradeHistory interface {
	RecentTrades(limit int) ([]types.TradeRecord, error)
}

type outgoing struct {
	text     string
	markdown bool
}

// TelegramBot manages the Telegram interface
type TelegramBot struct {
	mu      sync.RWMutex
	api     *tgbotapi.BotAPI
	out     Sender
	chatID  int64
	running bool
	stopCh  chan struct{}
	outbox  chan outgoing
	wg      sync.WaitGroup

	// Report sources
	stats   StatsProvider
	money   MoneyProvider
	history TradeHistory

	// Control callbacks
	onPause  func()
	onResume func()
}

// NewTelegramBot connects to the Telegram API
func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(api, chatID)
	b.api = api

	log.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram bot initialized")
	return b, nil
}

func newBot(out Sender, chatID int64) *TelegramBot {
	return &TelegramBot{
		out:    out,
		chatID: chatID,
		stopCh: make(chan struct{}),
		outbox: make(chan outgoing, outboxSize),
	}
}

// SetSources attaches the engine and money manager reports
func (b *TelegramBot) SetSources(stats StatsProvider, money MoneyProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = stats
	b.money = money
}

// SetTradeHistory enables /trades
func (b *TelegramBot) SetTradeHistory(h TradeHistory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = h
}

func (b *TelegramBot) sources() (StatsProvider, MoneyProvider, TradeHistory) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats, b.money, b.history
}

// SetControlCallbacks sets pause/resume handlers
func (b *TelegramBot) SetControlCallbacks(onPause, onResume func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPause = onPause
	b.onResume = onResume
}

// Start begins sending queued messages and, when connected, listening for commands
func (b *TelegramBot) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	b.wg.Add(1)
	go b.sendLoop()

	if b.api != nil {
		go b.commandLoop()
	}
	log.Info().Msg("📱 Telegram bot started")
}

// Stop flushes queued messages and stops the bot
func (b *TelegramBot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stopCh)
	b.mu.Unlock()

	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	b.wg.Wait()
	log.Info().Msg("Telegram bot stopped")
}

// ═══════════════════════════════════════════════════════════════════════════════
// NOTIFICATIONS
// ═══════════════════════════════════════════════════════════════════════════════

// RiskObserver forwards the money manager events worth a phone notification
func (b *TelegramBot) RiskObserver() risk.Observer {
	return func(e risk.Event) {
		switch e.Kind {
		case risk.EventRecoveryStarted:
			b.queue(fmt.Sprintf(`🔄 *RECOVERY STARTED*

📉 Lost: *$%s*
🎚️ Max levels: *%d*
💰 Balance: *$%s*`,
				e.Amount.StringFixed(2), e.Level.MaxRecoveryLevels(), e.Balance.StringFixed(2)), true)

		case risk.EventRecoveryCompleted:
			b.queue(fmt.Sprintf(`✅ *RECOVERY COMPLETE*

💵 Recovered: *$%s*
💰 Balance: *$%s*`,
				e.Amount.StringFixed(2), e.Balance.StringFixed(2)), true)

		case risk.EventMaxLevelReached:
			b.queue(fmt.Sprintf("🚨 *MAX RECOVERY LEVEL* %d/%d\n\n💸 Deficit: *$%s*",
				e.RecoveryLevel, e.MaxLevels, e.Deficit.StringFixed(2)), true)

		case risk.EventStopAdvised:
			b.queue(fmt.Sprintf(`⛔ *STOP TRADING*

📌 Reason: *%s*
💰 Balance: *$%s*`,
				escape(string(e.StopReason)), e.Balance.StringFixed(2)), true)

		case risk.EventProfitTarget:
			b.queue(fmt.Sprintf("🎯 *PROFIT TARGET HIT*\n\n💵 Profit: *%s*\n💰 Balance: *$%s*",
				signed(e.Amount), e.Balance.StringFixed(2)), true)
		}
	}
}

// NotifyStartup sends startup notification
func (b *TelegramBot) NotifyStartup(symbol string, level risk.Level) {
	balance := "N/A"
	if stats, _, _ := b.sources(); stats != nil {
		balance = "$" + stats.Snapshot().Balance.StringFixed(2)
	}

	b.queue(fmt.Sprintf(`🚀 *DIGITBOT STARTED*
━━━━━━━━━━━━━━━━━━━━

📊 Symbol: *%s*
🎚️ Risk: *%s*
💰 Balance: *%s*

Use /help for commands`, escape(symbol), escape(level.String()), balance), true)
}

// NotifyError sends an error alert
func (b *TelegramBot) NotifyError(err error) {
	b.queue(fmt.Sprintf("⚠️ ERROR\n\n%s", err.Error()), false)
}

// ═══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLING
// ═══════════════════════════════════════════════════════════════════════════════

func (b *TelegramBot) commandLoop() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-b.stopCh:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			// Only respond to authorized chat
			if update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				continue
			}

			b.handleCommand(update.Message.Command())
		}
	}
}

func (b *TelegramBot) handleCommand(cmd string) {
	switch strings.ToLower(cmd) {
	case "start", "help":
		b.cmdHelp()
	case "status":
		b.cmdStatus()
	case "stats":
		b.cmdStats()
	case "trades":
		b.cmdTrades()
	case "plan":
		b.cmdPlan()
	case "summary":
		b.cmdSummary()
	case "pause":
		b.cmdPause()
	case "resume":
		b.cmdResume()
	case "ping":
		b.queue("🏓 Pong!", false)
	default:
		b.queue("❓ Unknown command. Use /help", false)
	}
}

func (b *TelegramBot) cmdHelp() {
	b.queue(`🤖 *DIGITBOT COMMANDS*
━━━━━━━━━━━━━━━━━━━━

📊 /status - Engine status
📈 /stats - Session statistics
📜 /trades - Last 10 trades
📋 /plan - Recovery stake plan
🧾 /summary - Money manager summary
⏸️ /pause - Pause trading
▶️ /resume - Resume trading
🏓 /ping - Test connection`, true)
}

func (b *TelegramBot) cmdStatus() {
	stats, money, _ := b.sources()
	if stats == nil {
		b.queue("❌ Status not available", false)
		return
	}
	snap := stats.Snapshot()

	status := "🟢 RUNNING"
	switch {
	case snap.Halted:
		status = "⛔ HALTED (" + escape(snap.HaltReason) + ")"
	case snap.Paused:
		status = "⏸️ PAUSED"
	}

	open := "none"
	if snap.Open != nil {
		open = fmt.Sprintf("%s %d @ $%s", snap.Open.Type, snap.Open.Prediction, snap.Open.Stake.StringFixed(2))
	}

	recovery := "no"
	if money != nil {
		if st := money.State(); st.IsRecovering {
			recovery = fmt.Sprintf("level %d, deficit $%s", st.Level, st.TotalDeficit.StringFixed(2))
		}
	}

	b.queue(fmt.Sprintf(`📊 *BOT STATUS*
━━━━━━━━━━━━━━━━━━━━

%s
📊 Symbol: *%s*
💰 Balance: *$%s*
📦 Open: *%s*
🔄 Recovery: *%s*
🔢 Ticks: *%d*`,
		status, escape(snap.Symbol), snap.Balance.StringFixed(2), escape(open), recovery, snap.Ticks), true)
}

func (b *TelegramBot) cmdStats() {
	stats, _, _ := b.sources()
	if stats == nil {
		b.queue("❌ Stats not available", false)
		return
	}
	snap := stats.Snapshot()

	winRate := float64(0)
	if snap.Trades > 0 {
		winRate = float64(snap.Wins) / float64(snap.Trades) * 100
	}

	b.queue(fmt.Sprintf(`📈 *TRADING STATS*
━━━━━━━━━━━━━━━━━━━━

📊 Total Trades: *%d*
✅ Wins: *%d*
❌ Losses: *%d*
📈 Win Rate: *%.1f%%*

━━━━━━━━━━━━━━━━━━━━
💵 Total P&L: *%s*
💰 Balance: *$%s*`,
		snap.Trades, snap.Wins, snap.Losses, winRate,
		signed(snap.PnL), snap.Balance.StringFixed(2)), true)
}

func (b *TelegramBot) cmdTrades() {
	_, _, history := b.sources()
	if history == nil {
		b.queue("❌ Trades not available", false)
		return
	}

	trades, err := history.RecentTrades(10)
	if err != nil {
		b.queue("❌ Failed to fetch trades", false)
		return
	}
	if len(trades) == 0 {
		b.queue("📭 No trade history yet", false)
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 *LAST 10 TRADES*\n━━━━━━━━━━━━━━━━━━━━\n\n")
	for _, t := range trades {
		icon := "❌"
		if t.IsWin {
			icon = "✅"
		}
		tag := ""
		if t.IsRecovery {
			tag = fmt.Sprintf(" 🔄L%d", t.RecoveryLevel)
		}
		fmt.Fprintf(&sb, "%s $%s → %s%s\n   _%s_\n\n",
			icon, t.Stake.StringFixed(2), signed(t.Profit), tag,
			t.Timestamp.Format("Jan 2 15:04:05"))
	}

	b.queue(sb.String(), true)
}

func (b *TelegramBot) cmdPlan() {
	_, money, _ := b.sources()
	if money == nil {
		b.queue("❌ Plan not available", false)
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 *RECOVERY PLAN*\n━━━━━━━━━━━━━━━━━━━━\n\n")
	for _, p := range money.Preview(5) {
		icon := "✅"
		if !p.CanAfford {
			icon = "⚠️"
		}
		fmt.Fprintf(&sb, "%s L%d: $%s (total $%s)\n", icon, p.Level, p.Stake.StringFixed(2), p.CumulativeRisk.StringFixed(2))
	}

	b.queue(sb.String(), true)
}

func (b *TelegramBot) cmdSummary() {
	_, money, _ := b.sources()
	if money == nil {
		b.queue("❌ Summary not available", false)
		return
	}
	b.queue(money.Summary(), false)
}

func (b *TelegramBot) cmdPause() {
	b.mu.RLock()
	cb := b.onPause
	b.mu.RUnlock()

	if cb != nil {
		cb()
	}

	b.queue("⏸️ Trading paused", false)
	log.Info().Msg("Trading paused via Telegram")
}

func (b *TelegramBot) cmdResume() {
	b.mu.RLock()
	cb := b.onResume
	b.mu.RUnlock()

	if cb != nil {
		cb()
	}

	b.queue("▶️ Trading resumed", false)
	log.Info().Msg("Trading resumed via Telegram")
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// queue drops the message when the outbox is full
func (b *TelegramBot) queue(text string, markdown bool) {
	select {
	case b.outbox <- outgoing{text: text, markdown: markdown}:
	default:
		log.Warn().Msg("Telegram outbox full, dropping message")
	}
}

func (b *TelegramBot) sendLoop() {
	defer b.wg.Done()
	for {
		select {
		case m := <-b.outbox:
			b.send(m)
		case <-b.stopCh:
			for {
				select {
				case m := <-b.outbox:
					b.send(m)
				default:
					return
				}
			}
		}
	}
}

func (b *TelegramBot) send(m outgoing) {
	msg := tgbotapi.NewMessage(b.chatID, m.text)
	if m.markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := b.out.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send Telegram message")
	}
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

// escape guards legacy Markdown against underscores in reasons and symbols
func escape(s string) string {
	return strings.ReplaceAll(s, "_", "\\_")
}
