package config

import (
	"sort"

	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/disturbance"
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

var Presets = map[string]map[string]*Config{
	sim.ModelCartPole: {
		"balance": {
			Model: sim.ModelCartPole, Dt: DefaultDt, Duration: 30.0, PIDOn: true,
			CartPole: CartPoleConfig{
				Angle: 0.1,
				Gains: control.Gains{Kp: 50, Ki: 1, Kd: 10},
			},
		},
		"recover": {
			Model: sim.ModelCartPole, Dt: DefaultDt, Duration: 30.0, PIDOn: true,
			CartPole: CartPoleConfig{
				Angle: 0.4,
				Gains: control.Gains{Kp: 50, Ki: 1, Kd: 10},
			},
		},
		"freefall": {
			Model: sim.ModelCartPole, Dt: DefaultDt, Duration: 10.0,
			CartPole: CartPoleConfig{Angle: 0.05},
		},
	},
	sim.ModelDrone: {
		"hover": {
			Model: sim.ModelDrone, Dt: DefaultDt, Duration: 30.0, PIDOn: true,
			Drone: droneBase(),
		},
		"crosswind": {
			Model: sim.ModelDrone, Dt: DefaultDt, Duration: 60.0, PIDOn: true, Seed: 1,
			Drone: withDisturbance(disturbance.Config{
				Wind: disturbance.WindConfig{
					Enabled:             true,
					BaseSpeed:           2,
					GustFrequency:       0.5,
					GustMagnitude:       3,
					TurbulenceIntensity: 0.5,
				},
			}),
		},
		"flutter": {
			Model: sim.ModelDrone, Dt: DefaultDt, Duration: 60.0, PIDOn: true, Seed: 1,
			Drone: withDisturbance(disturbance.Config{
				ThrustNoise: disturbance.ThrustNoiseConfig{Enabled: true, Magnitude: 0.15},
			}),
		},
		"worn-rotor": {
			Model: sim.ModelDrone, Dt: DefaultDt, Duration: 60.0, PIDOn: true,
			Drone: func() DroneConfig {
				d := droneBase()
				d.LeftEfficiency = 0.85
				d.ComOffset = 0.03
				return d
			}(),
		},
	},
}

// droneBase is the hover scenario every drone preset varies from.
func droneBase() DroneConfig {
	return DefaultConfig().Drone
}

func withDisturbance(cfg disturbance.Config) DroneConfig {
	d := droneBase()
	d.Disturbance = cfg
	return d
}

// GetPreset returns a private copy, so callers may layer overrides onto
// it without editing the table.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
