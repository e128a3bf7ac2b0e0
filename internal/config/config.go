package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Flyrell/clockfill/internal/table"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds everything a run needs besides its input files.
type Config struct {
	HolidayFactor     float64           `yaml:"holiday_factor"`
	MinimumAttendance int               `yaml:"minimum_attendance"`
	LookbackDays      int               `yaml:"lookback_days"`
	OvernightGapHours int               `yaml:"overnight_gap_hours"`
	NightShiftHour    int               `yaml:"night_shift_hour"`
	CSVEncoding       string            `yaml:"csv_encoding"`
	ProblemFile       string            `yaml:"problem_file"`
	SheetNameFormat   string            `yaml:"sheet_name_format"`
	Columns           table.ColumnRules `yaml:"columns"`
	Sites             []Site            `yaml:"sites"`
}

// Site describes where one site's timesheet workbook keeps its data.
type Site struct {
	Name           string     `yaml:"name"`
	Blocks         []Block    `yaml:"blocks"`
	ClearRanges    []string   `yaml:"clear_ranges"`
	ResetDateCells []string   `yaml:"reset_date_cells"`
	CarryOver      *CarryOver `yaml:"carry_over,omitempty"`
}

// Block is a column of names with the check-in and check-out columns beside it.
// All three ranges must span the same number of rows.
type Block struct {
	Names    string `yaml:"names"`
	CheckIn  string `yaml:"check_in"`
	CheckOut string `yaml:"check_out"`
}

// CarryOver makes Cells reference Source on the previous sheet.
type CarryOver struct {
	Cells  []string `yaml:"cells"`
	Source string   `yaml:"source"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		HolidayFactor:     0.5,
		MinimumAttendance: 3,
		LookbackDays:      7,
		OvernightGapHours: 12,
		NightShiftHour:    12,
		CSVEncoding:       "utf-8",
		ProblemFile:       "problems.xlsx",
		SheetNameFormat:   "01.02",
		Columns:           table.DefaultColumnRules(),
		Sites: []Site{
			{
				Name: "yeoju",
				Blocks: []Block{
					{Names: "B6:B36", CheckIn: "E6:E36", CheckOut: "F6:F36"},
					{Names: "M6:M36", CheckIn: "P6:P36", CheckOut: "Q6:Q36"},
				},
				ClearRanges:    []string{"E6:F36", "P6:Q36"},
				ResetDateCells: []string{"C2"},
				CarryOver:      &CarryOver{Cells: []string{"W4"}, Source: "W37"},
			},
			{
				Name: "smc",
				Blocks: []Block{
					{Names: "B6:B30", CheckIn: "E6:E30", CheckOut: "F6:F30"},
				},
				ClearRanges:    []string{"E6:F30"},
				ResetDateCells: []string{"C2"},
				CarryOver:      &CarryOver{Cells: []string{"T4"}, Source: "T31"},
			},
		},
	}
}

// ConfigDir returns the global clockfill directory.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".clockfill")
}

// Path returns the default config file location.
func Path(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// Read loads the config at path. A missing file yields the defaults; fields
// absent from the file keep their default values.
func Read(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write stores cfg at path, creating the directory if needed.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Site returns the site with the given name, ignoring case.
func (c *Config) Site(name string) *Site {
	for i := range c.Sites {
		if strings.EqualFold(c.Sites[i].Name, name) {
			return &c.Sites[i]
		}
	}
	return nil
}

// SiteNames lists the configured site names in order.
func (c *Config) SiteNames() []string {
	names := make([]string, len(c.Sites))
	for i, s := range c.Sites {
		names[i] = s.Name
	}
	return names
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.HolidayFactor <= 0 || c.HolidayFactor > 1 {
		add("holiday_factor must be in (0, 1], got %g", c.HolidayFactor)
	}
	if c.MinimumAttendance < 0 {
		add("minimum_attendance must not be negative")
	}
	if c.LookbackDays < 1 {
		add("lookback_days must be at least 1")
	}
	if c.OvernightGapHours < 1 || c.OvernightGapHours > 24 {
		add("overnight_gap_hours must be between 1 and 24")
	}
	if c.NightShiftHour < 0 || c.NightShiftHour > 23 {
		add("night_shift_hour must be between 0 and 23")
	}
	if !table.SupportedEncoding(c.CSVEncoding) {
		add("csv_encoding %q is not supported", c.CSVEncoding)
	}
	if strings.TrimSpace(c.ProblemFile) == "" {
		add("problem_file is required")
	}
	if strings.TrimSpace(c.SheetNameFormat) == "" {
		add("sheet_name_format is required")
	}
	for _, col := range []struct {
		name     string
		keywords []string
	}{
		{table.ColDate, c.Columns.Date},
		{table.ColName, c.Columns.Name},
		{table.ColCheckIn, c.Columns.CheckIn},
		{table.ColCheckOut, c.Columns.CheckOut},
	} {
		if len(col.keywords) == 0 {
			add("columns.%s needs at least one keyword", col.name)
		}
	}

	if len(c.Sites) == 0 {
		add("at least one site is required")
	}
	seen := make(map[string]bool)
	for i, s := range c.Sites {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			add("sites[%d] has no name", i)
		} else if seen[key] {
			add("site %q is defined twice", s.Name)
		}
		seen[key] = true

		if len(s.Blocks) == 0 {
			add("site %q has no blocks", s.Name)
		}
		for j, b := range s.Blocks {
			if b.Names == "" || b.CheckIn == "" || b.CheckOut == "" {
				add("site %q block %d needs names, check_in and check_out ranges", s.Name, j)
			}
		}
		if s.CarryOver != nil && s.CarryOver.Source == "" && len(s.CarryOver.Cells) > 0 {
			add("site %q carry_over needs a source cell", s.Name)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}
