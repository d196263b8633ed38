package pattern

import (
	"fmt"

	"github.com/huangsam/cadence/schema"
)

// PresetParameters returns the default pattern for a preset.
func PresetParameters(preset schema.Preset) (schema.PatternParameters, error) {
	switch preset {
	case schema.BatchPreset, "":
		return schema.PatternParameters{
			DaysBack:         365,
			Frequency:        80,
			MinCommitsPerDay: 1,
			MaxCommitsPerDay: 10,
			StartHour:        9,
			EndHour:          21,
		}, nil
	case schema.HighVolumePreset:
		return schema.PatternParameters{
			DaysBack:         365,
			Frequency:        95,
			MinCommitsPerDay: 3,
			MaxCommitsPerDay: 15,
			BurstChance:      0.3,
			StartHour:        6,
			EndHour:          23,
		}, nil
	default:
		return schema.PatternParameters{}, fmt.Errorf("%w: unknown preset %q", schema.ErrInvalidParameters, preset)
	}
}
