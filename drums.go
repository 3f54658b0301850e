package gooey

import "github.com/cbegin/gooey-go/internal/voice"

// Kick returns the built-in kick for per-parameter control.
func (s *Stage) Kick() *voice.Kick { return s.kick }

// Snare returns the built-in snare for per-parameter control.
func (s *Stage) Snare() *voice.Snare { return s.snare }

// HiHat returns the built-in hi-hat for per-parameter control.
func (s *Stage) HiHat() *voice.HiHat { return s.hihat }

// Tom returns the built-in tom for per-parameter control.
func (s *Stage) Tom() *voice.Tom { return s.tom }

func (s *Stage) TriggerKick()  { s.kick.Trigger() }
func (s *Stage) TriggerSnare() { s.snare.Trigger() }
func (s *Stage) TriggerHiHat() { s.hihat.Trigger() }
func (s *Stage) TriggerTom()   { s.tom.Trigger() }

// TriggerLane triggers the drum that a sequencer lane plays.
func (s *Stage) TriggerLane(lane int) error {
	if lane < 0 || lane >= Lanes {
		return ErrInvalidLane
	}
	s.drums[lane].Trigger()
	return nil
}

// SetLaneEnabled mutes or unmutes the drum on a lane.
func (s *Stage) SetLaneEnabled(lane int, enabled bool) error {
	if lane < 0 || lane >= Lanes {
		return ErrInvalidLane
	}
	s.drums[lane].SetEnabled(enabled)
	return nil
}

func (s *Stage) LaneEnabled(lane int) (bool, error) {
	if lane < 0 || lane >= Lanes {
		return false, ErrInvalidLane
	}
	return s.drums[lane].Enabled(), nil
}

func (s *Stage) ConfigureKick(cfg KickConfig)   { s.kick.Configure(cfg) }
func (s *Stage) ConfigureSnare(cfg SnareConfig) { s.snare.Configure(cfg) }
func (s *Stage) ConfigureHiHat(cfg HiHatConfig) { s.hihat.Configure(cfg) }
func (s *Stage) ConfigureTom(cfg TomConfig)     { s.tom.Configure(cfg) }

func (s *Stage) KickConfig() KickConfig   { return s.kick.Config() }
func (s *Stage) SnareConfig() SnareConfig { return s.snare.Config() }
func (s *Stage) HiHatConfig() HiHatConfig { return s.hihat.Config() }
func (s *Stage) TomConfig() TomConfig     { return s.tom.Config() }

// LoadKickPreset applies a named kick preset. Unknown names leave the
// current configuration untouched.
func (s *Stage) LoadKickPreset(name string) error {
	return s.loadPreset("kick", name, s.kick.LoadPreset)
}

func (s *Stage) LoadSnarePreset(name string) error {
	return s.loadPreset("snare", name, s.snare.LoadPreset)
}

func (s *Stage) LoadHiHatPreset(name string) error {
	return s.loadPreset("hihat", name, s.hihat.LoadPreset)
}

func (s *Stage) LoadTomPreset(name string) error {
	return s.loadPreset("tom", name, s.tom.LoadPreset)
}

func (s *Stage) loadPreset(kind, name string, load func(string) error) error {
	if err := load(name); err != nil {
		s.logger.Warn("preset not loaded", "voice", kind, "preset", name, "err", err)
		return err
	}
	s.logger.Info("preset loaded", "voice", kind, "preset", name)
	return nil
}
