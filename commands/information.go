package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"orion-bot/i18n"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Information reports gateway and database latency plus host statistics.
func (d *Deps) Information(ctx context.Context, c Caller) (*Reply, error) {
	name := d.Config.BotName
	na := "`N/A`"

	botLatency := na
	if d.Latency != nil {
		botLatency = fmt.Sprintf("`%dms`", d.Latency().Milliseconds())
	}
	dbLatency := na
	if rtt, err := d.Store.Ping(ctx); err == nil {
		dbLatency = fmt.Sprintf("`%dms`", rtt.Milliseconds())
	} else {
		log := utils.Module("commands")
		log.Warn().Err(err).Msg("Database ping failed")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: d.t(c, "info.bot_latency", nil), Value: botLatency, Inline: true},
		{Name: d.t(c, "info.database_latency", nil), Value: dbLatency, Inline: true},
		{Name: d.t(c, "info.go_version", nil), Value: runtime.Version(), Inline: true},
		{Name: d.t(c, "info.goroutines", nil), Value: fmt.Sprint(runtime.NumGoroutine()), Inline: true},
	}

	// host stats are best effort; containers often hide some of them
	if hi, err := host.InfoWithContext(ctx); err == nil {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: d.t(c, "info.os", nil), Value: fmt.Sprintf("%s %s", hi.Platform, hi.PlatformVersion), Inline: true},
			&discordgo.MessageEmbedField{Name: d.t(c, "info.uptime", nil), Value: FormatHM(secondsDuration(hi.Uptime)), Inline: true},
		)
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		usage := na
		if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
			usage = fmt.Sprintf("%.1f%%", pct[0])
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: d.t(c, "info.cpu", nil), Value: d.t(c, "info.cpu_value", i18n.Params{"count": n, "usage": usage}), Inline: true,
		})
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   d.t(c, "info.memory", nil),
			Value:  fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024),
			Inline: true,
		})
	}

	return embedReply(&discordgo.MessageEmbed{
		Title:       d.t(c, "info.title", i18n.Params{"name": name}),
		Description: d.t(c, "info.description", i18n.Params{"name": name}),
		Color:       d.color(),
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: d.t(c, "info.footer", i18n.Params{"name": name})},
	}), nil
}

func secondsDuration(s uint64) time.Duration {
	return time.Duration(s) * time.Second
}
