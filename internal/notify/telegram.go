// Package notify surfaces engine events to the parent over Telegram and
// accepts a small set of parent commands. Delivery is fire-and-forget: the
// engine never waits on, or reads a result from, a notification.
package notify

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/kidquest/internal/engine"
	"github.com/example/kidquest/internal/timewindow"
	"github.com/example/kidquest/pkg/models"
)

// Telegram is the parent-facing chat surface.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	engine *engine.Engine
	log    *logrus.Entry
	done   chan struct{}
}

// New builds the surface from TELEGRAM_BOT_TOKEN and PARENT_CHAT_ID.
// Returns (nil, nil) when no token is configured so the app can run
// headless.
func New(e *engine.Engine) (*Telegram, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, nil
	}
	chatID, err := strconv.ParseInt(os.Getenv("PARENT_CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("PARENT_CHAT_ID must be a chat id: %v", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	return &Telegram{
		api:    api,
		chatID: chatID,
		engine: e,
		log:    logrus.WithField("component", "notify"),
		done:   make(chan struct{}),
	}, nil
}

// Notify implements engine.Notifier.
func (t *Telegram) Notify(kind, payload string) {
	var text string
	switch kind {
	case engine.NotifyPromotion:
		text = "📣 New task is up: " + payload
	case engine.NotifyCompletion:
		text = "✅ Task completed: " + payload
	default:
		text = payload
	}
	go t.send(text)
}

func (t *Telegram) send(text string) {
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.log.WithError(err).Warn("failed to send message")
	}
}

// Start consumes updates until Stop is called.
func (t *Telegram) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(update)
			case <-t.done:
				return
			}
		}
	}()
}

// Stop ends the update loop.
func (t *Telegram) Stop() {
	close(t.done)
	t.api.StopReceivingUpdates()
}

func (t *Telegram) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	// Only the configured parent chat may drive the engine.
	if update.Message.Chat.ID != t.chatID {
		return
	}

	msg := update.Message
	var err error
	switch msg.Command() {
	case "status":
		err = t.handleStatus()
	case "patrol":
		err = t.handlePatrol()
	case "push":
		err = t.handlePush(msg.CommandArguments())
	case "withdraw":
		err = t.handleWithdraw(msg.CommandArguments())
	case "library":
		err = t.handleLibrary()
	case "schedule":
		err = t.handleSchedule(msg.CommandArguments())
	default:
		t.send("Commands: /status /patrol /push <reward> <title> /withdraw <id> /library /schedule <start> <end> <limit>")
	}
	if err != nil {
		// Double-submits read as "already handled", not as failures.
		if err == engine.ErrTaskAlreadyCompleted {
			t.send("Already handled.")
			return
		}
		t.send("Error: " + err.Error())
	}
}

func (t *Telegram) handleStatus() error {
	profile := t.engine.Profile()
	pending := t.engine.Pending()

	var b strings.Builder
	fmt.Fprintf(&b, "Level %d, %d xp, %d coins, %d fragments, streak %d\n",
		profile.Level, profile.XP, profile.Coins, profile.Fragments, profile.Streak)
	fmt.Fprintf(&b, "Push window %02d:00-%02d:00, daily limit %d\n",
		profile.PushStartHour, profile.PushEndHour, profile.DailyLimit)
	if len(pending) == 0 {
		b.WriteString("No pending task.")
	} else {
		for _, task := range pending {
			fmt.Fprintf(&b, "Pending: %s (%s, id %s)\n", task.Title, task.Source, task.ID)
		}
	}
	t.send(b.String())
	return nil
}

func (t *Telegram) handlePatrol() error {
	task, err := t.engine.Patrol()
	if err != nil {
		return err
	}
	t.send("Patrol found: " + task.Title)
	return nil
}

func (t *Telegram) handlePush(args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		t.send("Usage: /push <reward> <title>")
		return nil
	}
	reward, err := strconv.Atoi(fields[0])
	if err != nil {
		t.send("Usage: /push <reward> <title>")
		return nil
	}
	title := strings.Join(fields[1:], " ")
	_, err = t.engine.PushTask(title, models.TypeGeneric, reward, nil)
	return err
}

func (t *Telegram) handleWithdraw(args string) error {
	id := strings.TrimSpace(args)
	if id == "" {
		t.send("Usage: /withdraw <task id>")
		return nil
	}
	if err := t.engine.Withdraw(id); err != nil {
		return err
	}
	t.send("Task withdrawn.")
	return nil
}

func (t *Telegram) handleLibrary() error {
	items := t.engine.Library()
	if len(items) == 0 {
		t.send("Library is empty.")
		return nil
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s [%s lv%d] next %s\n", item.Title, item.Type, item.MemoryLevel,
			timewindow.In(item.NextReview).Format("01-02 15:04"))
	}
	t.send(b.String())
	return nil
}

func (t *Telegram) handleSchedule(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		t.send("Usage: /schedule <start hour> <end hour> <daily limit>")
		return nil
	}
	start, err1 := strconv.Atoi(fields[0])
	end, err2 := strconv.Atoi(fields[1])
	limit, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		t.send("Usage: /schedule <start hour> <end hour> <daily limit>")
		return nil
	}
	if err := t.engine.UpdateSchedule(start, end, limit); err != nil {
		return err
	}
	t.send("Schedule updated.")
	return nil
}
