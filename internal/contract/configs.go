package contract

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/regpulse/regpulse/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	DefaultSourceTable = "registration_events"
	DefaultAddr        = ":8080"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GoalsRawInput holds the goal table from the YAML config file.
// Map keys arrive lower-cased from viper and are matched case-insensitively.
type GoalsRawInput struct {
	Products        []string       `mapstructure:"products"`
	Registration    map[string]int `mapstructure:"registration"`
	ICP             map[string]int `mapstructure:"icp"`
	AttendanceRatio *float64       `mapstructure:"attendance-ratio"`
	Total           int            `mapstructure:"total"`
}

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	Source        string
	SourceBackend schema.SourceBackend
	SourceTable   string
	FetchTimeout  time.Duration // 0 = no timeout beyond the transport default
	PollInterval  time.Duration

	Selection schema.Selection
	Now       time.Time // fixed "today"; zero means the wall clock

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	SortColumn    schema.SortColumn
	SortDirection schema.SortDirection
	Check         bool // Report malformed events

	Addr string

	Goals schema.GoalConfig
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Source        string `mapstructure:"source"`
	SourceBackend string `mapstructure:"source-backend"`
	SourceTable   string `mapstructure:"source-table"`
	FetchTimeout  string `mapstructure:"fetch-timeout"`
	PollInterval  string `mapstructure:"poll-interval"`
	Product       string `mapstructure:"product"`
	Quarter       string `mapstructure:"quarter"`
	Now           string `mapstructure:"now"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Precision     int    `mapstructure:"precision"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	LogLevel      string `mapstructure:"log-level"`

	// --- Fields from eventsCmd.Flags() ---
	Sort  string `mapstructure:"sort"`
	Dir   string `mapstructure:"dir"`
	Check bool   `mapstructure:"check"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Goal table from config file ---
	Goals GoalsRawInput `mapstructure:"goals"`
}

// Clock returns the configured "today", or the wall clock when none is fixed.
func (c *Config) Clock() func() time.Time {
	if c.Now.IsZero() {
		return time.Now
	}
	fixed := c.Now
	return func() time.Time { return fixed }
}

// Clone returns a copy of the Config struct. GoalConfig is immutable and shared.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processListing(cfg, input); err != nil {
		return err
	}
	if err := processGoals(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessOffline validates the output, scope and goal settings but not the snapshot
// source. It serves commands that never fetch, such as metrics.
func ProcessOffline(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	return processGoals(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for the SQL source backends.
func ValidateDatabaseConnectionString(backend schema.SourceBackend, connStr string) error {
	switch backend {
	case schema.SQLiteSource:
		if connStr == "" {
			return fmt.Errorf("source is required when using %s backend", backend)
		}
	case schema.MySQLSource:
		if connStr == "" {
			return fmt.Errorf("source is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLSource:
		if connStr == "" {
			return fmt.Errorf("source is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseNow parses a fixed "today" given as RFC3339 or a plain date. Plain dates are
// UTC midnight. An empty string yields the zero time.
func ParseNow(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(schema.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s'. Expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// parseDuration accepts Go durations ("2m", "90s") and treats empty as fallback.
func parseDuration(name, s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative (received %s)", name, s)
	}
	return d, nil
}

// validateSimpleInputs processes and validates output and scope fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.Check = input.Check

	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	precision := input.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	if precision < 1 || precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = precision

	output := strings.ToLower(input.Output)
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(output)
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	now, err := ParseNow(input.Now)
	if err != nil {
		return fmt.Errorf("invalid --now value: %w", err)
	}
	cfg.Now = now

	cfg.Selection = schema.Selection{Product: input.Product, Quarter: input.Quarter}.Normalized()

	cfg.Addr = strings.TrimSpace(input.Addr)
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return nil
}

// processSource validates the snapshot source location and its timing.
func processSource(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.SourceBackend))
	if backend == "" {
		backend = string(schema.HTTPSource)
	}
	cfg.SourceBackend = schema.SourceBackend(backend)
	if _, ok := schema.ValidSourceBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be http, file, sqlite, mysql, postgresql", input.SourceBackend)
	}

	cfg.Source = strings.TrimSpace(input.Source)
	switch cfg.SourceBackend {
	case schema.HTTPSource:
		if cfg.Source == "" {
			return fmt.Errorf("source URL is required when using %s backend", cfg.SourceBackend)
		}
		u, err := url.Parse(cfg.Source)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source must be an absolute http(s) URL (received %q)", cfg.Source)
		}
	case schema.FileSource:
		if cfg.Source == "" {
			return fmt.Errorf("source path is required when using %s backend", cfg.SourceBackend)
		}
	default:
		if err := ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.Source); err != nil {
			return err
		}
	}

	cfg.SourceTable = strings.TrimSpace(input.SourceTable)
	if cfg.SourceTable == "" {
		cfg.SourceTable = DefaultSourceTable
	}
	if !tableNamePattern.MatchString(cfg.SourceTable) {
		return fmt.Errorf("invalid source table '%s'. must be a plain SQL identifier", cfg.SourceTable)
	}

	timeout, err := parseDuration("fetch-timeout", input.FetchTimeout, 0)
	if err != nil {
		return err
	}
	cfg.FetchTimeout = timeout

	interval, err := parseDuration("poll-interval", input.PollInterval, schema.DefaultPollInterval)
	if err != nil {
		return err
	}
	if interval == 0 {
		return fmt.Errorf("poll-interval must be greater than 0")
	}
	cfg.PollInterval = interval
	return nil
}

// processListing validates the event list sort.
func processListing(cfg *Config, input *ConfigRawInput) error {
	column := strings.TrimSpace(input.Sort)
	if column == "" {
		column = string(schema.ColumnDate)
	}
	cfg.SortColumn = schema.SortColumn(column)
	if _, ok := schema.ValidSortColumns[cfg.SortColumn]; !ok {
		return fmt.Errorf("invalid sort column '%s'", input.Sort)
	}

	dir := strings.ToLower(strings.TrimSpace(input.Dir))
	if dir == "" {
		dir = string(schema.Descending)
	}
	cfg.SortDirection = schema.SortDirection(dir)
	if cfg.SortDirection != schema.Ascending && cfg.SortDirection != schema.Descending {
		return fmt.Errorf("invalid sort direction '%s'. must be asc, desc", input.Dir)
	}
	return nil
}

// processGoals merges the configured goal table over the built-in defaults.
func processGoals(cfg *Config, input *ConfigRawInput) error {
	defaults := schema.DefaultGoalConfig()
	raw := input.Goals

	products := defaults.Products()
	if len(raw.Products) > 0 {
		products = products[:0]
		for _, p := range raw.Products {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if schema.IsAll(p) {
				return fmt.Errorf("product code '%s' is reserved", p)
			}
			if slices.Contains(products, p) {
				return fmt.Errorf("duplicate product code '%s'", p)
			}
			products = append(products, p)
		}
		if len(products) == 0 {
			return fmt.Errorf("goals.products cannot be empty")
		}
	}

	registration, err := mergeGoals("registration", products, raw.Registration, defaults.Goal)
	if err != nil {
		return err
	}
	icp, err := mergeGoals("icp", products, raw.ICP, defaults.ICPGoal)
	if err != nil {
		return err
	}

	ratio := defaults.AttendanceRatio()
	if raw.AttendanceRatio != nil {
		ratio = *raw.AttendanceRatio
		if ratio <= 0 || ratio > 1 {
			return fmt.Errorf("goals.attendance-ratio must be in (0, 1] (received %.2f)", ratio)
		}
	}
	if raw.Total < 0 {
		return fmt.Errorf("goals.total cannot be negative (received %d)", raw.Total)
	}

	cfg.Goals = schema.NewGoalConfig(products, registration, icp, ratio, raw.Total)
	if !schema.IsAll(cfg.Selection.Product) && !cfg.Goals.HasProduct(cfg.Selection.Product) {
		return fmt.Errorf("unknown product '%s'. must be All or one of %s", cfg.Selection.Product, strings.Join(products, ", "))
	}
	return nil
}

func mergeGoals(name string, products []string, raw map[string]int, fallback func(string) int) (map[string]int, error) {
	lowered := make(map[string]int, len(raw))
	for k, v := range raw {
		if v < 0 {
			return nil, fmt.Errorf("goals.%s for %s cannot be negative (received %d)", name, k, v)
		}
		lowered[strings.ToLower(k)] = v
	}
	out := make(map[string]int, len(products))
	for _, p := range products {
		if v, ok := lowered[strings.ToLower(p)]; ok {
			out[p] = v
			continue
		}
		out[p] = fallback(p)
	}
	return out, nil
}
