package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/httpeek/internal/config"
)

func TestParseFlags_AliasesAndRepeatedHeaders(t *testing.T) {
	f, err := ParseFlags([]string{
		"-u", "example.com",
		"-sc", "2xx,301-302",
		"-cl", "100-200",
		"--headers", "X-One: 1",
		"--headers", "X-Two: 2",
		"--threads", "8",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "example.com", f.URL)
	assert.Equal(t, "2xx,301-302", f.StatusCode)
	assert.Equal(t, "100-200", f.ContentLength)
	assert.Equal(t, []string{"X-One: 1", "X-Two: 2"}, []string(f.Headers))
	assert.True(t, f.IsSet("url"))
	assert.True(t, f.IsSet("status-code"))
	assert.True(t, f.IsSet("content-length"))
	assert.True(t, f.IsSet("threads"))
	assert.False(t, f.IsSet("timeout"))
	assert.True(t, f.HasInput())
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := ParseFlags([]string{"--json", "--csv"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = ParseFlags([]string{"-u", "x", "stray"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = ParseFlags([]string{"--timeout", "soon"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseFlags_NoInput(t *testing.T) {
	f, err := ParseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, f.HasInput())
}

func TestApply_OnlySetFlagsOverride(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	cfg.ProbeConfig.TimeoutSecs = 30
	cfg.SchedulerConfig.Threads = 7

	f, err := ParseFlags([]string{"-l", "targets.txt", "--retries", "1", "--no-redirect", "--method", "head"}, &bytes.Buffer{})
	require.NoError(t, err)
	f.Apply(cfg)

	assert.Equal(t, 30, cfg.ProbeConfig.TimeoutSecs, "unset flag keeps the file value")
	assert.Equal(t, 7, cfg.SchedulerConfig.Threads)
	assert.Equal(t, 1, cfg.ProbeConfig.Retries)
	assert.False(t, cfg.ProbeConfig.FollowRedirects)
	assert.Equal(t, "HEAD", cfg.ProbeConfig.Method)
	assert.Equal(t, config.DefaultStatusFilter, cfg.FilterConfig.StatusCode)
}

func TestApply_OutputModes(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		format       string
		presentation string
	}{
		{"default live", nil, config.FormatTable, config.PresentationLive},
		{"silent shows final table", []string{"--silent"}, config.FormatTable, config.PresentationFinal},
		{"json is silent", []string{"--json"}, config.FormatJSON, config.PresentationSilent},
		{"csv is silent", []string{"--csv", "--silent"}, config.FormatCSV, config.PresentationSilent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultGlobalConfig()
			f, err := ParseFlags(tt.args, &bytes.Buffer{})
			require.NoError(t, err)
			f.Apply(cfg)

			assert.Equal(t, tt.format, cfg.OutputConfig.Format)
			assert.Equal(t, tt.presentation, cfg.OutputConfig.EffectivePresentation())
		})
	}
}

func TestApply_FiltersAndProbe(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	f, err := ParseFlags([]string{
		"--exclude-status", "404",
		"--exclude-length", "0,10-20",
		"--title-match", "admin",
		"--body-match", "login",
		"--match-mode", "substring",
		"--only-active",
		"--tls-info",
		"--proxy", "socks5://127.0.0.1:1080",
		"--random-agent",
		"--insecure",
		"--rate-limit", "2.5",
		"-o", "out.txt",
		"--headers", "Authorization: Bearer x",
		"--log-level", "debug",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	f.Apply(cfg)

	assert.Equal(t, "404", cfg.FilterConfig.ExcludeStatus)
	assert.Equal(t, "0,10-20", cfg.FilterConfig.ExcludeLength)
	assert.Equal(t, "admin", cfg.FilterConfig.TitleMatch)
	assert.Equal(t, "login", cfg.FilterConfig.BodyMatch)
	assert.Equal(t, "substring", cfg.FilterConfig.MatchMode)
	assert.True(t, cfg.FilterConfig.OnlyActive)
	assert.True(t, cfg.FilterConfig.TLSInfo)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.ProbeConfig.Proxy)
	assert.True(t, cfg.ProbeConfig.RandomAgent)
	assert.True(t, cfg.ProbeConfig.InsecureSkipVerify)
	assert.Equal(t, 2.5, cfg.SchedulerConfig.RateLimit)
	assert.Equal(t, "out.txt", cfg.OutputConfig.OutputFile)
	assert.Equal(t, []string{"Authorization: Bearer x"}, cfg.ProbeConfig.CustomHeaders)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	require.NoError(t, config.ValidateConfig(cfg))
}
