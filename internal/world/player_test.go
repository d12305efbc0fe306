package world

import "testing"

func TestPlayerDamageAndRevive(t *testing.T) {
	p := NewPlayer(10)
	if !p.Alive() {
		t.Fatal("new player should be alive")
	}
	if p.Damage(4) {
		t.Fatal("non-lethal hit reported lethal")
	}
	if p.HP != 6 {
		t.Fatalf("HP = %v, want 6", p.HP)
	}
	if !p.Damage(10) {
		t.Fatal("lethal hit not reported")
	}
	if p.Alive() || p.HP != 0 || p.Deaths != 1 {
		t.Fatalf("after death: alive=%v hp=%v deaths=%d", p.Alive(), p.HP, p.Deaths)
	}
	if p.Damage(1) {
		t.Fatal("dead player took a second lethal hit")
	}

	p.Revive()
	if !p.Alive() || p.HP != 10 {
		t.Fatalf("after revive: alive=%v hp=%v", p.Alive(), p.HP)
	}
}

func TestNewPlayerClampsMaxHP(t *testing.T) {
	p := NewPlayer(0)
	if p.MaxHP != 1 || !p.Alive() {
		t.Fatalf("MaxHP = %v alive=%v", p.MaxHP, p.Alive())
	}
}
