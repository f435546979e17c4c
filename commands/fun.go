package commands

import (
	"context"

	"orion-bot/i18n"
)

// DiceSides is the number of faces on the /dice die.
const DiceSides = 6

// Coinflip flips a coin.
func (d *Deps) Coinflip(_ context.Context, c Caller) (*Reply, error) {
	side := "fun.heads"
	if d.randN(2) == 1 {
		side = "fun.tails"
	}
	return &Reply{Content: d.t(c, "fun.coinflip_result", i18n.Params{"result": d.t(c, side, nil)})}, nil
}

// Dice rolls a six-sided die.
func (d *Deps) Dice(_ context.Context, c Caller) (*Reply, error) {
	roll := d.randN(DiceSides) + 1
	return &Reply{Content: d.t(c, "fun.dice_result", i18n.Params{"result": roll})}, nil
}
