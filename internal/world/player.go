package world

// Player is the headless stand-in for the arena's player. It only tracks
// hit points and whether it died during the current wave.
// Accessed only from the game loop goroutine.
type Player struct {
	HP    float64
	MaxHP float64

	// Deaths counts how many times HP reached zero since start.
	Deaths int
	// diedThisWave latches until Revive so a wave that killed the player
	// reports a loss even if a later tick would have left it alive.
	diedThisWave bool
}

func NewPlayer(maxHP float64) *Player {
	if maxHP <= 0 {
		maxHP = 1
	}
	return &Player{HP: maxHP, MaxHP: maxHP}
}

// Alive reports whether the player has survived the wave so far.
func (p *Player) Alive() bool { return !p.diedThisWave && p.HP > 0 }

// Damage subtracts amount and reports whether this hit was lethal.
func (p *Player) Damage(amount float64) bool {
	if amount <= 0 || p.diedThisWave {
		return false
	}
	p.HP -= amount
	if p.HP > 0 {
		return false
	}
	p.HP = 0
	p.diedThisWave = true
	p.Deaths++
	return true
}

// Revive restores full HP and clears the death latch.
func (p *Player) Revive() {
	p.HP = p.MaxHP
	p.diedThisWave = false
}
