package config

// Presentation policies for the terminal UI.
const (
	PresentationLive   = "live"
	PresentationFinal  = "final"
	PresentationSilent = "silent"
)

// Output formats. Export formats stream records and silence the table UI.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// OutputConfig controls how results are shown and persisted.
type OutputConfig struct {
	Format       string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=table json csv"`
	NoColor      bool   `json:"no_color" yaml:"no_color"`
	OutputFile   string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	Presentation string `json:"presentation,omitempty" yaml:"presentation,omitempty" validate:"omitempty,presentation"`
	ShowProgress bool   `json:"show_progress" yaml:"show_progress"`
}

func NewDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Format:       DefaultOutputFormat,
		Presentation: DefaultPresentation,
		ShowProgress: true,
	}
}

// IsExport reports whether results are streamed as JSON or CSV.
func (oc OutputConfig) IsExport() bool {
	return oc.Format == FormatJSON || oc.Format == FormatCSV
}

// EffectivePresentation forces silent when exporting.
func (oc OutputConfig) EffectivePresentation() string {
	if oc.IsExport() {
		return PresentationSilent
	}
	if oc.Presentation == "" {
		return DefaultPresentation
	}
	return oc.Presentation
}
