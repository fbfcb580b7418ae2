package bot

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

var c *cron.Cron

// startScheduler starts the cron jobs: the cooldown sweep and the guild
// roster refresh. Ad expiry has no job here; its scheduler is a separate
// feature that would call Registry.ExpireStale.
func startScheduler(b *Bot) {
	log.Println("Initializing scheduler...")
	c = cron.New()

	_, err := c.AddFunc("@every 10m", func() {
		swept, err := b.Cooldowns.SweepExpired(time.Now())
		if err != nil {
			log.Printf("Cooldown sweep failed: %v", err)
			return
		}
		if swept > 0 {
			log.Printf("Cooldown sweep removed %d expired rows", swept)
		}
	})
	if err != nil {
		log.Fatalf("Could not set up cooldown sweep job: %v", err)
	}

	_, err = c.AddFunc("@hourly", func() {
		// Reconcile the roster with the session state in case a guild
		// event was missed while disconnected.
		for _, g := range b.Session.State.Guilds {
			if err := b.GuildConfigs.AddGuild(g.ID, time.Now()); err != nil {
				log.Printf("Roster refresh failed for guild %s: %v", g.ID, err)
			}
		}
	})
	if err != nil {
		log.Fatalf("Could not set up roster refresh job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs scheduled.")
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}
