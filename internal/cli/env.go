package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/runlog"
	"github.com/Flyrell/clockfill/internal/table"
)

var (
	configFlag  = StringFlag{Name: "config", Usage: "config file (default ~/.clockfill/config.yaml)"}
	verboseFlag = BoolFlag{Name: "verbose", Usage: "log every resolved name"}
	yesFlag     = BoolFlag{Name: "yes", Usage: "skip confirmation prompts"}
)

// loadConfig reads path, or the default config file under homeDir when path
// is empty.
func loadConfig(homeDir, path string) (*config.Config, error) {
	if path == "" {
		path = config.Path(homeDir)
	}
	return config.Read(path)
}

// newLogger returns a console logger writing to w together with its handler,
// which keeps the warning and error counts of the run.
func newLogger(w io.Writer, verbose bool) (*slog.Logger, *runlog.ConsoleHandler) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := runlog.NewConsoleHandler(w, level)
	return slog.New(h), h
}

// loadRows loads the raw attendance table and maps its columns.
func loadRows(path string, cfg *config.Config) ([]table.RawRow, error) {
	t, err := table.Load(path, table.LoadOptions{Encoding: cfg.CSVEncoding})
	if err != nil {
		return nil, err
	}
	t, err = table.MapColumns(t, cfg.Columns)
	if err != nil {
		return nil, err
	}
	return t.RawRows(), nil
}

// siteWorkbook pairs a configured site with the workbook to fill.
type siteWorkbook struct {
	site config.Site
	path string
}

// parseSiteFlags turns name=path pairs into workbooks in configuration order.
func parseSiteFlags(values []string, cfg *config.Config) ([]siteWorkbook, error) {
	paths := make(map[string]string, len(values))
	for _, v := range values {
		name, path, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		path = strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --site %q (expected name=path)", v)
		}
		site := cfg.Site(name)
		if site == nil {
			return nil, fmt.Errorf("unknown site %q (configured: %s)", name, strings.Join(cfg.SiteNames(), ", "))
		}
		paths[site.Name] = path
	}

	var out []siteWorkbook
	for _, s := range cfg.Sites {
		if p, ok := paths[s.Name]; ok {
			out = append(out, siteWorkbook{site: s, path: p})
		}
	}
	return out, nil
}
