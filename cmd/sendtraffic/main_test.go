package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/twinfan/sendtraffic/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:        config.DefaultHost,
		TrafficPort: config.DefaultTrafficPort,
		WeatherPort: config.DefaultWeatherPort,
		OwnshipPort: config.DefaultOwnshipPort,
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil, testConfig())
	if err != nil {
		t.Fatalf("parseFlags() failed: %v", err)
	}

	if opts.host != "localhost" {
		t.Errorf("host = %q, want localhost", opts.host)
	}
	if opts.port != 49005 {
		t.Errorf("port = %d, want 49005", opts.port)
	}
	if opts.weatherPort != 49004 {
		t.Errorf("weatherPort = %d, want 49004", opts.weatherPort)
	}
	if opts.bufPeriod != 0 || opts.historic != 0 {
		t.Errorf("bufPeriod/historic = %d/%d, want 0/0", opts.bufPeriod, opts.historic)
	}
	if opts.loop || opts.verbose || opts.getUserPos || opts.printUserPos {
		t.Error("boolean flags should default to false")
	}
	if opts.inFile != "" {
		t.Errorf("inFile = %q, want empty (stdin)", opts.inFile)
	}
}

func TestParseFlags_AllFlags(t *testing.T) {
	args := []string{
		"-a", "AB618B", "-d", "42",
		"-b", "60", "-historic", "3600",
		"-l", "-v", "-u", "-up",
		"-host", "192.168.1.10", "-port", "10110", "-weatherPort", "10111",
		"traffic.csv",
	}

	opts, err := parseFlags(args, testConfig())
	if err != nil {
		t.Fatalf("parseFlags() failed: %v", err)
	}

	if opts.aircraftHex != "AB618B" || opts.aircraftDec != "42" {
		t.Errorf("aircraft lists = %q/%q", opts.aircraftHex, opts.aircraftDec)
	}
	if opts.bufPeriod != 60 || opts.historic != 3600 {
		t.Errorf("bufPeriod/historic = %d/%d, want 60/3600", opts.bufPeriod, opts.historic)
	}
	if !opts.loop || !opts.verbose || !opts.getUserPos || !opts.printUserPos {
		t.Error("boolean flags should all be set")
	}
	if opts.host != "192.168.1.10" || opts.port != 10110 || opts.weatherPort != 10111 {
		t.Errorf("target = %s:%d/%d", opts.host, opts.port, opts.weatherPort)
	}
	if opts.inFile != "traffic.csv" {
		t.Errorf("inFile = %q, want traffic.csv", opts.inFile)
	}
}

func TestParseFlags_PrintPosRequiresTracking(t *testing.T) {
	if _, err := parseFlags([]string{"-up"}, testConfig()); err == nil {
		t.Error("parseFlags() should reject -up without -u")
	}
}

func TestParseFlags_TooManyArguments(t *testing.T) {
	if _, err := parseFlags([]string{"one.csv", "two.csv"}, testConfig()); err == nil {
		t.Error("parseFlags() should reject more than one input file")
	}
}

func TestExpandArgFiles_Passthrough(t *testing.T) {
	args := []string{"-l", "-v", "traffic.csv"}

	got, err := expandArgFiles(args)
	if err != nil {
		t.Fatalf("expandArgFiles() failed: %v", err)
	}
	if !reflect.DeepEqual(got, args) {
		t.Errorf("expandArgFiles() = %v, want %v", got, args)
	}
}

func TestExpandArgFiles_Expansion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.txt")
	content := "-l\n-b\n60\n\n  -v  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write argument file: %v", err)
	}

	got, err := expandArgFiles([]string{"@" + path, "traffic.csv"})
	if err != nil {
		t.Fatalf("expandArgFiles() failed: %v", err)
	}

	want := []string{"-l", "-b", "60", "-v", "traffic.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandArgFiles() = %v, want %v", got, want)
	}
}

func TestExpandArgFiles_MissingFile(t *testing.T) {
	if _, err := expandArgFiles([]string{"@/does/not/exist"}); err == nil {
		t.Error("expandArgFiles() should fail for a missing argument file")
	}
}
