package spawn

import (
	"math/rand"

	"github.com/l1jgo/horde/internal/component"
)

// Arena is the playfield rectangle [0,Width]×[0,Height]. Enemies enter from
// just outside its border.
type Arena struct {
	Width  float64
	Height float64
	Margin float64
}

// EdgePoint picks a uniformly random point along the border, pushed outward
// by Margin.
func (a Arena) EdgePoint(rng *rand.Rand) component.Vec2 {
	w, h, m := a.Width, a.Height, a.Margin
	d := rng.Float64() * 2 * (w + h)
	switch {
	case d < w:
		return component.Vec2{X: d, Y: -m}
	case d < w+h:
		return component.Vec2{X: w + m, Y: d - w}
	case d < 2*w+h:
		return component.Vec2{X: w - (d - w - h), Y: h + m}
	default:
		return component.Vec2{X: -m, Y: h - (d - 2*w - h)}
	}
}
