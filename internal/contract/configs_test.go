package contract

import (
	"testing"
	"time"

	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Source:    "https://feed.example.test/events.json",
		Precision: 1,
		Output:    "text",
		Color:     "no",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "missing url", mutate: func(in *ConfigRawInput) { in.Source = "" }, expectError: true},
		{name: "relative url", mutate: func(in *ConfigRawInput) { in.Source = "/events.json" }, expectError: true},
		{name: "file source", mutate: func(in *ConfigRawInput) { in.SourceBackend = "file"; in.Source = "events.json" }},
		{name: "sqlite source", mutate: func(in *ConfigRawInput) { in.SourceBackend = "SQLite"; in.Source = "file::memory:" }},
		{name: "mysql without tcp", mutate: func(in *ConfigRawInput) { in.SourceBackend = "mysql"; in.Source = "root@/db" }, expectError: true},
		{name: "mysql valid", mutate: func(in *ConfigRawInput) {
			in.SourceBackend = "mysql"
			in.Source = "user:pass@tcp(localhost:3306)/regpulse"
		}},
		{name: "postgres missing dbname", mutate: func(in *ConfigRawInput) {
			in.SourceBackend = "postgresql"
			in.Source = "host=localhost user=x"
		}, expectError: true},
		{name: "unknown backend", mutate: func(in *ConfigRawInput) { in.SourceBackend = "kafka" }, expectError: true},
		{name: "bad table name", mutate: func(in *ConfigRawInput) { in.SourceTable = "events; drop" }, expectError: true},
		{name: "bad output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet needs file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "bad precision", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: true},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "bad now", mutate: func(in *ConfigRawInput) { in.Now = "yesterday" }, expectError: true},
		{name: "bad poll interval", mutate: func(in *ConfigRawInput) { in.PollInterval = "soon" }, expectError: true},
		{name: "zero poll interval", mutate: func(in *ConfigRawInput) { in.PollInterval = "0s" }, expectError: true},
		{name: "negative timeout", mutate: func(in *ConfigRawInput) { in.FetchTimeout = "-1s" }, expectError: true},
		{name: "bad sort", mutate: func(in *ConfigRawInput) { in.Sort = "score" }, expectError: true},
		{name: "bad dir", mutate: func(in *ConfigRawInput) { in.Dir = "up" }, expectError: true},
		{name: "unknown product", mutate: func(in *ConfigRawInput) { in.Product = "XYZ" }, expectError: true},
		{name: "known product", mutate: func(in *ConfigRawInput) { in.Product = "VET-I" }},
		{name: "bad attendance ratio", mutate: func(in *ConfigRawInput) {
			r := 1.5
			in.Goals.AttendanceRatio = &r
		}, expectError: true},
		{name: "negative goal", mutate: func(in *ConfigRawInput) { in.Goals.Registration = map[string]int{"td": -1} }, expectError: true},
		{name: "duplicate product", mutate: func(in *ConfigRawInput) { in.Goals.Products = []string{"TD", "TD"} }, expectError: true},
		{name: "reserved product", mutate: func(in *ConfigRawInput) { in.Goals.Products = []string{"All"} }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{Source: "http://localhost:9000/feed"}))

	assert.Equal(t, schema.HTTPSource, cfg.SourceBackend)
	assert.Equal(t, DefaultSourceTable, cfg.SourceTable)
	assert.Equal(t, schema.DefaultPollInterval, cfg.PollInterval)
	assert.Zero(t, cfg.FetchTimeout)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, schema.ColumnDate, cfg.SortColumn)
	assert.Equal(t, schema.Descending, cfg.SortDirection)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, schema.Selection{Product: "All", Quarter: "All"}, cfg.Selection)
	assert.True(t, cfg.Now.IsZero())
	assert.Equal(t, 1186, cfg.Goals.Total())
}

func TestProcessGoalsMergesOverDefaults(t *testing.T) {
	ratio := 0.5
	input := validInput()
	input.Goals = GoalsRawInput{
		Products:        []string{"TD", "NEW"},
		Registration:    map[string]int{"td": 300, "new": 40},
		ICP:             map[string]int{"NEW": 20},
		AttendanceRatio: &ratio,
	}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	g := cfg.Goals
	assert.Equal(t, []string{"TD", "NEW"}, g.Products())
	assert.Equal(t, 300, g.Goal("TD"))
	assert.Equal(t, 40, g.Goal("NEW"))
	assert.Equal(t, 183, g.ICPGoal("TD"), "missing entries fall back to defaults")
	assert.Equal(t, 20, g.ICPGoal("NEW"))
	assert.Equal(t, 0.5, g.AttendanceRatio())
	assert.Equal(t, 340, g.Total())
	assert.False(t, g.HasProduct("BOA"))
}

func TestProcessOffline(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessOffline(cfg, &ConfigRawInput{Output: "csv"}))
	assert.Empty(t, cfg.Source)
	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.Equal(t, schema.DefaultAttendanceRatio, cfg.Goals.AttendanceRatio())

	err := ProcessOffline(&Config{}, &ConfigRawInput{Output: "xml"})
	assert.ErrorContains(t, err, "invalid output format")
}

func TestParseNow(t *testing.T) {
	got, err := ParseNow("2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseNow("2026-01-31T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC), got)

	got, err = ParseNow("  ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseNow("31/01/2026")
	assert.Error(t, err)
}

func TestConfigClock(t *testing.T) {
	cfg := &Config{}
	before := time.Now()
	assert.False(t, cfg.Clock()().Before(before))

	fixed := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cfg.Now = fixed
	assert.Equal(t, fixed, cfg.Clock()())

	clone := cfg.Clone()
	clone.Now = time.Time{}
	assert.Equal(t, fixed, cfg.Now)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteSource, "regpulse.db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.SQLiteSource, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLSource, "host=db dbname=regpulse sslmode=disable"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLSource, "dbname=regpulse"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLSource, "user@tcp(db:3306)"))
}
