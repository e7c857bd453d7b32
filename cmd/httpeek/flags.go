package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/aleister1102/httpeek/internal/config"
)

// headerList collects repeated --headers values.
type headerList []string

func (h *headerList) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerList) Set(value string) error {
	*h = append(*h, value)
	return nil
}

// AppFlags holds the command line. Only flags that were set override the config file.
type AppFlags struct {
	URL        string
	ListFile   string
	Stdin      bool
	Output     string
	ConfigFile string
	Version    bool

	RandomAgent bool
	Method      string
	Timeout     int
	Retries     int
	Proxy       string
	Headers     headerList
	NoRedirect  bool
	Insecure    bool

	StatusCode    string
	ExcludeStatus string
	ContentLength string
	ExcludeLength string
	TitleMatch    string
	BodyMatch     string
	MatchMode     string
	OnlyActive    bool
	TLSInfo       bool

	Threads   int
	RateLimit float64

	Silent  bool
	JSON    bool
	CSV     bool
	NoColor bool

	LogLevel string
	LogFile  string

	set map[string]bool
}

// flagAliases maps short names to the long name they stand for.
var flagAliases = map[string]string{
	"u":  "url",
	"l":  "list",
	"o":  "output",
	"sc": "status-code",
	"cl": "content-length",
	"c":  "config",
}

// ParseFlags parses args (without the program name). Usage goes to usageOut.
func ParseFlags(args []string, usageOut io.Writer) (AppFlags, error) {
	var f AppFlags
	fs := flag.NewFlagSet("httpeek", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	fs.StringVar(&f.URL, "url", "", "Single target URL or host")
	fs.StringVar(&f.URL, "u", "", "Alias for -url")
	fs.StringVar(&f.ListFile, "list", "", "File with one target per line")
	fs.StringVar(&f.ListFile, "l", "", "Alias for -list")
	fs.BoolVar(&f.Stdin, "stdin", false, "Read targets from standard input")
	fs.StringVar(&f.Output, "output", "", "Append plain results to a file")
	fs.StringVar(&f.Output, "o", "", "Alias for -output")
	fs.StringVar(&f.ConfigFile, "config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	fs.StringVar(&f.ConfigFile, "c", "", "Alias for -config")
	fs.BoolVar(&f.Version, "version", false, "Print version and exit")

	fs.BoolVar(&f.RandomAgent, "random-agent", false, "Use a random browser User-Agent per request")
	fs.StringVar(&f.Method, "method", config.DefaultProbeMethod, "HTTP method: GET or HEAD")
	fs.IntVar(&f.Timeout, "timeout", config.DefaultProbeTimeoutSecs, "Per-request timeout in seconds")
	fs.IntVar(&f.Retries, "retries", config.DefaultProbeRetries, "Retries on network errors")
	fs.StringVar(&f.Proxy, "proxy", "", "Proxy URL (http, https or socks5)")
	fs.Var(&f.Headers, "headers", "Custom header 'Key: Value' (repeatable); replaces the default headers")
	fs.BoolVar(&f.NoRedirect, "no-redirect", false, "Do not follow redirects")
	fs.BoolVar(&f.Insecure, "insecure", false, "Skip TLS certificate verification")

	fs.StringVar(&f.StatusCode, "status-code", config.DefaultStatusFilter, "Status filter, e.g. 200,301-302,2xx")
	fs.StringVar(&f.StatusCode, "sc", config.DefaultStatusFilter, "Alias for -status-code")
	fs.StringVar(&f.ExcludeStatus, "exclude-status", "", "Comma-separated status codes to hide")
	fs.StringVar(&f.ContentLength, "content-length", "", "Body length filter: N or lo-hi")
	fs.StringVar(&f.ContentLength, "cl", "", "Alias for -content-length")
	fs.StringVar(&f.ExcludeLength, "exclude-length", "", "Body lengths to hide: values and lo-hi ranges")
	fs.StringVar(&f.TitleMatch, "title-match", "", "Keep results whose title matches")
	fs.StringVar(&f.BodyMatch, "body-match", "", "Keep results whose body matches")
	fs.StringVar(&f.MatchMode, "match-mode", config.DefaultMatchMode, "How title/body patterns match: regex or substring")
	fs.BoolVar(&f.OnlyActive, "only-active", false, "Only keep targets that returned a status")
	fs.BoolVar(&f.TLSInfo, "tls-info", false, "Fetch certificate subject, issuer and expiry for https targets")

	fs.IntVar(&f.Threads, "threads", config.DefaultThreads, "Concurrent probes")
	fs.Float64Var(&f.RateLimit, "rate-limit", config.DefaultRateLimit, "Max probes started per second (0 = unlimited)")

	fs.BoolVar(&f.Silent, "silent", false, "Hide live rows; print one table at the end")
	fs.BoolVar(&f.JSON, "json", false, "Print one JSON object per result")
	fs.BoolVar(&f.CSV, "csv", false, "Print CSV rows")
	fs.BoolVar(&f.NoColor, "no-color", false, "Disable colours")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() > 0 {
		return f, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		name := fl.Name
		if long, ok := flagAliases[name]; ok {
			name = long
		}
		f.set[name] = true
	})

	if f.JSON && f.CSV {
		return f, errors.New("-json and -csv cannot be used together")
	}
	return f, nil
}

// IsSet reports whether the named flag (long name) was given.
func (f AppFlags) IsSet(name string) bool {
	return f.set[name]
}

// HasInput reports whether any target source was given.
func (f AppFlags) HasInput() bool {
	return f.URL != "" || f.ListFile != "" || f.Stdin
}

// Apply copies the flags that were set onto cfg.
func (f AppFlags) Apply(cfg *config.GlobalConfig) {
	probe := &cfg.ProbeConfig
	if f.IsSet("random-agent") {
		probe.RandomAgent = f.RandomAgent
	}
	if f.IsSet("method") {
		probe.Method = strings.ToUpper(f.Method)
	}
	if f.IsSet("timeout") {
		probe.TimeoutSecs = f.Timeout
	}
	if f.IsSet("retries") {
		probe.Retries = f.Retries
	}
	if f.IsSet("proxy") {
		probe.Proxy = f.Proxy
	}
	if len(f.Headers) > 0 {
		probe.CustomHeaders = append([]string(nil), f.Headers...)
	}
	if f.IsSet("no-redirect") {
		probe.FollowRedirects = !f.NoRedirect
	}
	if f.IsSet("insecure") {
		probe.InsecureSkipVerify = f.Insecure
	}

	filter := &cfg.FilterConfig
	if f.IsSet("status-code") {
		filter.StatusCode = f.StatusCode
	}
	if f.IsSet("exclude-status") {
		filter.ExcludeStatus = f.ExcludeStatus
	}
	if f.IsSet("content-length") {
		filter.ContentLength = f.ContentLength
	}
	if f.IsSet("exclude-length") {
		filter.ExcludeLength = f.ExcludeLength
	}
	if f.IsSet("title-match") {
		filter.TitleMatch = f.TitleMatch
	}
	if f.IsSet("body-match") {
		filter.BodyMatch = f.BodyMatch
	}
	if f.IsSet("match-mode") {
		filter.MatchMode = f.MatchMode
	}
	if f.IsSet("only-active") {
		filter.OnlyActive = f.OnlyActive
	}
	if f.IsSet("tls-info") {
		filter.TLSInfo = f.TLSInfo
	}

	if f.IsSet("threads") {
		cfg.SchedulerConfig.Threads = f.Threads
	}
	if f.IsSet("rate-limit") {
		cfg.SchedulerConfig.RateLimit = f.RateLimit
	}

	output := &cfg.OutputConfig
	if f.Silent {
		output.Presentation = config.PresentationFinal
	}
	switch {
	case f.JSON:
		output.Format = config.FormatJSON
	case f.CSV:
		output.Format = config.FormatCSV
	}
	if f.IsSet("no-color") {
		output.NoColor = f.NoColor
	}
	if f.IsSet("output") {
		output.OutputFile = f.Output
	}

	if f.IsSet("log-level") {
		cfg.LogConfig.LogLevel = f.LogLevel
	}
	if f.IsSet("log-file") {
		cfg.LogConfig.LogFile = f.LogFile
	}
}
