package backend

import (
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/feamerge/fea"
	"github.com/npillmayer/feamerge/merge"
)

// DefaultOutputName is the file name of the merged feature source.
const DefaultOutputName = "variable_features.fea"

// Environment variables read by SettingsFromEnv.
const (
	EnvOutput           = "FEAMERGE_OUTPUT"
	EnvPreserveComments = "FEAMERGE_PRESERVE_COMMENTS"
	EnvExpandGroups     = "FEAMERGE_EXPAND_GROUPS"
)

// Settings configure the operations of a Backend.
type Settings struct {
	OutputName       string // file name of the merged feature source
	PreserveComments bool   // keep comment lines when expanding groups
	ExpandGroups     bool   // expand kerning groups of every master before merging
}

// DefaultSettings returns the settings used if nothing else is configured.
func DefaultSettings() Settings {
	return Settings{
		OutputName:       DefaultOutputName,
		PreserveComments: true,
	}
}

// SettingsFromEnv overlays the default settings with environment variables.
// Unparsable boolean values are ignored.
func SettingsFromEnv() Settings {
	s := DefaultSettings()
	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		s.OutputName = v
	}
	if b, err := strconv.ParseBool(os.Getenv(EnvPreserveComments)); err == nil {
		s.PreserveComments = b
	}
	if b, err := strconv.ParseBool(os.Getenv(EnvExpandGroups)); err == nil {
		s.ExpandGroups = b
	}
	return s
}

func (s Settings) expandOptions() []fea.ExpandOption {
	if s.PreserveComments {
		return nil
	}
	return []fea.ExpandOption{fea.StripComments}
}

func (s Settings) mergeOptions() []merge.Option {
	if s.ExpandGroups {
		return []merge.Option{merge.ExpandGroups}
	}
	return nil
}
