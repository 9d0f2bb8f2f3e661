package ports

import "context"

type ActivityOverride struct {
	Label    string         `yaml:"label"`
	Cost     map[string]int `yaml:"cost"`
	Disabled bool           `yaml:"disabled"`
}

type Tuning struct {
	Activities map[string]ActivityOverride `yaml:"activities"`
}

type TuningProvider interface {
	Load(ctx context.Context) (Tuning, error)
}
