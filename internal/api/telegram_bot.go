package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/usecases"
)

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	useCase *usecases.RiverUseCase
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.RiverUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &TelegramBot{bot: bot, useCase: useCase}, nil
}

// Start begins listening for and handling Telegram messages
func (t *TelegramBot) Start() {
	log.Infof("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Info("Bot is now listening for messages...")

	for update := range updates {
		if update.Message == nil {
			continue
		}
		log.Infof("Received message from %s (ID: %d): %s",
			update.Message.From.UserName,
			update.Message.From.ID,
			update.Message.Text)
		t.handleMessage(update)
	}
}

func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")

	switch {
	case update.Message.IsCommand():
		t.handleCommand(update.Message, &msg)
	default:
		t.handleNonCommand(update.Message, &msg)
	}

	if _, err := t.bot.Send(msg); err != nil {
		log.Errorf("Error sending message: %v", err)
	}
}

func (t *TelegramBot) handleCommand(message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	switch message.Command() {
	case "start":
		msg.Text = "Welcome to Pegel-Monitor! Use /rivers to see the monitored water bodies or /help for more information."

	case "help":
		msg.Text = "Available commands:\n" +
			"/start - Start the bot\n" +
			"/rivers - Show the monitored water bodies\n" +
			"/river [name] - Show readings for a specific water body\n" +
			"/help - Show this help message"

	case "rivers":
		t.handleRiversCommand(msg)

	case "river":
		t.handleRiverCommand(message.CommandArguments(), msg)

	default:
		log.Infof("Received unknown command /%s from user %s", message.Command(), message.From.UserName)
		msg.Text = "Unknown command. Use /help to see available commands."
	}
}

func (t *TelegramBot) handleRiversCommand(msg *tgbotapi.MessageConfig) {
	data := t.useCase.CachedRiversData(context.Background())
	if data.Error != "" {
		msg.Text = "Error fetching water data. Please try again later."
		log.Errorf("Error fetching water data: %s", data.Error)
		return
	}

	msg.Text = "Monitored water bodies:\n\n"
	for _, rd := range data.Rivers {
		label := rd.Name
		if rd.IsLake {
			label += " (lake)"
		}
		msg.Text += "• " + label + "\n"
	}
	msg.Text += "\nUse /river [name] to get detailed information."
	msg.Text += fmt.Sprintf("\n\n🕒 Last update: %s", data.LastUpdated.Format("2006-01-02 15:04:05"))
}

func (t *TelegramBot) handleRiverCommand(args string, msg *tgbotapi.MessageConfig) {
	if args == "" {
		msg.Text = "Please specify a water body. Example: /river Isar"
		return
	}

	data := t.useCase.CachedRiversData(context.Background())
	for _, rd := range data.Rivers {
		if strings.EqualFold(rd.Name, args) {
			msg.Text = FormatRiverInfo(rd, data.LastUpdated)
			return
		}
	}
	msg.Text = fmt.Sprintf("No information found for '%s'. Use /rivers to see the monitored water bodies.", args)
}

func (t *TelegramBot) handleNonCommand(message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	if strings.HasPrefix(message.Text, "/river ") {
		t.handleRiverCommand(strings.TrimPrefix(message.Text, "/river "), msg)
		return
	}
	msg.Text = "I don't understand. Use /help to see available commands."
}

// FormatRiverInfo formats one water body's readings for display
func FormatRiverInfo(rd entities.RiverData, lastUpdate time.Time) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s (%s)\n\n", rd.Name, rd.Location))

	if rd.CurrentLevel != nil {
		result.WriteString(fmt.Sprintf("💧 Water Level: %.0f cm%s\n", rd.CurrentLevel.Level, changeSuffix(rd.LevelChange)))
	}
	if rd.CurrentFlow != nil {
		result.WriteString(fmt.Sprintf("🌊 Discharge: %.1f m³/s%s\n", rd.CurrentFlow.Flow, changeSuffix(rd.FlowChange)))
	}
	if rd.CurrentTemperature != nil {
		result.WriteString(fmt.Sprintf("🌡️ Water Temperature: %.1f °C%s\n", rd.CurrentTemperature.Temperature, changeSuffix(rd.TemperatureChange)))
		if rd.CurrentTemperature.Situation != "" {
			result.WriteString(fmt.Sprintf("ℹ️ %s\n", rd.CurrentTemperature.Situation))
		}
	}
	if rd.CurrentLevel == nil && rd.CurrentFlow == nil && rd.CurrentTemperature == nil {
		result.WriteString("No readings available at the moment.\n")
	}

	switch rd.AlertLevel {
	case entities.AlertWarning:
		result.WriteString("⚠️ Alert level: warning\n")
	case entities.AlertDanger:
		result.WriteString("🔴 Alert level: alert\n")
	}
	if rd.WebcamURL != "" {
		result.WriteString(fmt.Sprintf("📷 Webcam: %s\n", rd.WebcamURL))
	}

	result.WriteString(fmt.Sprintf("\n🕒 Last update: %s", lastUpdate.Format("2006-01-02 15:04:05")))
	return result.String()
}

func changeSuffix(dc *entities.DailyChange) string {
	if dc == nil || dc.Status == entities.ChangeStable {
		return ""
	}
	arrow := "📈"
	if dc.Absolute < 0 {
		arrow = "📉"
	}
	return fmt.Sprintf(" (%s %+.1f / 24h)", arrow, dc.Absolute)
}
