package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mesoflow/internal/meso"
)

const (
	DefaultDt       = 0.01
	DefaultBox      = 20.0
	DefaultCellSize = 1.0
	DefaultDensity  = 5.0
	DefaultKT       = 1.0
	DefaultAngle    = 130.0
	DefaultSteps    = 1000
)

type Config struct {
	Box      float64 `yaml:"box"`
	CellSize float64 `yaml:"cell_size"`
	N        int     `yaml:"particles"`
	Density  float64 `yaml:"density"`
	Mass     float64 `yaml:"mass"`
	KT       float64 `yaml:"kt"`
	Dt       float64 `yaml:"dt"`
	Steps    int     `yaml:"steps"`
	Seed     int64   `yaml:"seed"`

	Stream  StreamConfig  `yaml:"stream"`
	Collide CollideConfig `yaml:"collide"`
	Solute  SoluteConfig  `yaml:"solute"`
}

type StreamConfig struct {
	Method  string  `yaml:"method"` // bulk, bounceback, none
	Period  int     `yaml:"period"`
	Phase   int     `yaml:"phase"`
	SlitGap float64 `yaml:"slit_gap"`
	NoSlip  bool    `yaml:"no_slip"`
}

type CollideConfig struct {
	Method          string  `yaml:"method"` // srd, at, none
	Period          int     `yaml:"period"`
	Phase           int     `yaml:"phase"`
	Angle           float64 `yaml:"angle"`
	KT              float64 `yaml:"kt"`
	AngularMomentum bool    `yaml:"angular_momentum"`
}

type SoluteConfig struct {
	N      int     `yaml:"count"`
	Mass   float64 `yaml:"mass"`
	Couple bool    `yaml:"couple"`
}

func DefaultConfig() *Config {
	return &Config{
		Box:      DefaultBox,
		CellSize: DefaultCellSize,
		Density:  DefaultDensity,
		Mass:     1.0,
		KT:       DefaultKT,
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		Seed:     42,
		Stream: StreamConfig{
			Method: "bulk",
			Period: 1,
			NoSlip: true,
		},
		Collide: CollideConfig{
			Method: "srd",
			Period: 1,
			Angle:  DefaultAngle,
			KT:     DefaultKT,
		},
		Solute: SoluteConfig{
			Mass:   5.0,
			Couple: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// NumParticles resolves the explicit count, or derives one from the
// target density (particles per collision cell).
func (c *Config) NumParticles() int {
	if c.N > 0 {
		return c.N
	}
	cells := c.Box * c.Box * c.Box / (c.CellSize * c.CellSize * c.CellSize)
	return int(c.Density * cells)
}

// Validate maps bad values to the engine's error taxonomy before any
// construction happens.
func (c *Config) Validate() error {
	if c.Box <= 0 {
		return fmt.Errorf("%w: box edge must be positive, got %g", meso.ErrParameter, c.Box)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", meso.ErrParameter, c.Dt)
	}
	if c.KT <= 0 {
		return fmt.Errorf("%w: kt must be positive, got %g", meso.ErrParameter, c.KT)
	}
	if c.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", meso.ErrParameter, c.Mass)
	}
	if c.NumParticles() <= 0 {
		return fmt.Errorf("%w: no solvent particles configured", meso.ErrParameter)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0, got %d", meso.ErrParameter, c.Steps)
	}

	switch c.Stream.Method {
	case "bulk", "none":
	case "bounceback":
		if c.Stream.SlitGap <= 0 || c.Stream.SlitGap > c.Box {
			return fmt.Errorf("%w: slit gap must be in (0, box], got %g", meso.ErrParameter, c.Stream.SlitGap)
		}
	default:
		return fmt.Errorf("%w: unknown streaming method %q", meso.ErrConfig, c.Stream.Method)
	}

	switch c.Collide.Method {
	case "srd":
		if c.Collide.Angle <= 0 || c.Collide.Angle >= 360 {
			return fmt.Errorf("%w: rotation angle must be in (0, 360), got %g", meso.ErrParameter, c.Collide.Angle)
		}
	case "at":
		if c.Collide.KT <= 0 {
			return fmt.Errorf("%w: thermostat temperature must be positive, got %g", meso.ErrParameter, c.Collide.KT)
		}
	case "none":
	default:
		return fmt.Errorf("%w: unknown collision method %q", meso.ErrConfig, c.Collide.Method)
	}

	if c.Solute.N < 0 {
		return fmt.Errorf("%w: solute count must be >= 0, got %d", meso.ErrParameter, c.Solute.N)
	}
	if c.Solute.N > 0 && c.Solute.Mass <= 0 {
		return fmt.Errorf("%w: solute mass must be positive, got %g", meso.ErrParameter, c.Solute.Mass)
	}
	return nil
}
