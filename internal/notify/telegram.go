package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/analyze"
	"github.com/Alias1177/volscan/models"
)

// Sender is the part of tgbotapi.BotAPI the notifier needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends volatility alerts to a Telegram chat
type Notifier struct {
	bot           Sender
	chatID        int64
	minConclusion string
	logger        zerolog.Logger
}

// NewTelegram connects to the bot API with token
func NewTelegram(token string, chatID int64, minConclusion string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return New(bot, chatID, minConclusion), nil
}

// New wraps an existing sender
func New(bot Sender, chatID int64, minConclusion string) *Notifier {
	return &Notifier{
		bot:           bot,
		chatID:        chatID,
		minConclusion: minConclusion,
		logger:        log.With().Str("component", "notify").Logger(),
	}
}

// ShouldNotify reports whether the report reaches the configured conclusion
func (n *Notifier) ShouldNotify(report models.SignalReport) bool {
	if report.Status != models.StatusOK {
		return false
	}
	return analyze.ConclusionRank(report.Conclusion) >= analyze.ConclusionRank(n.minConclusion)
}

// Notify sends an alert when the report qualifies. It returns whether a message was sent.
func (n *Notifier) Notify(exchange, symbol, interval string, report models.SignalReport) (bool, error) {
	if !n.ShouldNotify(report) {
		return false, nil
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(exchange, symbol, interval, report))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return false, fmt.Errorf("failed to send alert for %s: %w", symbol, err)
	}

	n.logger.Info().Str("symbol", symbol).Str("interval", interval).
		Str("conclusion", report.Conclusion).Msg("Alert sent")
	return true, nil
}

// FormatAlert renders a Markdown alert message
func FormatAlert(exchange, symbol, interval string, report models.SignalReport) string {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }

	var b strings.Builder
	fmt.Fprintf(&b, "⚡ *Volatility alert* %s %s (%s)\n\n", esc(strings.ToUpper(exchange)), esc(symbol), esc(interval))
	fmt.Fprintf(&b, "*%s*\n", esc(report.ConclusionText))
	fmt.Fprintf(&b, "Signal strength: %d\n", report.SignalStrength)

	if r := report.VolatilityAnalysis; r != nil && r.Status == models.StatusOK {
		fmt.Fprintf(&b, "Regime: %s, percentile %.2f, trend %s\n",
			esc(r.Regime), r.VolatilityPercentile, esc(r.VolatilityTrend))
	}

	if len(report.Signals) > 0 {
		b.WriteString("\nSignals:\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "• %s (+%d)\n", esc(s.Description), s.Strength)
		}
	}

	return b.String()
}
