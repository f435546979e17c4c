package bot

import (
	"context"
	"fmt"

	"orion-bot/utils"
)

// Run opens the gateway, starts the scheduler and blocks until ctx is done.
// Commands are registered from the Ready handler once the bot id is known.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	b.scheduler.Start(ctx)

	b.log.Info().Msg("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()

	if err := utils.LogInfo(b.Session, b.GetConfig().LogChannelID, "System", "Shutdown", "Bot is shutting down."); err != nil {
		b.log.Debug().Err(err).Msg("Shutdown notice not sent")
	}
	b.Close()
	return nil
}
