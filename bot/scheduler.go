package bot

import (
	"log"
	"sync"
	"time"

	"modbot/model"
	"modbot/tasks"
)

// tempbanPollInterval is how often the ledger is polled for expired
// temporary bans.
const tempbanPollInterval = time.Minute

// Scheduler owns the bot's background tasks.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	expirer := &tasks.TempbanExpirer{
		DB:       s.bot.DB,
		Members:  s.bot.Platform,
		Modlog:   s.bot.Modlog,
		Clock:    model.SystemClock{},
		Interval: tempbanPollInterval,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		expirer.Run(s.done)
	}()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}
