package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
	"marquee/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	omdb       *testsupport.OMDbServer
	configPath string
}

func fixtureMovies() []testsupport.Movie {
	return []testsupport.Movie{
		{ID: "tt2015381", Title: "Guardians of the Galaxy", Year: "2014", Genre: "Action, Adventure", Poster: "https://img.example/gotg.jpg"},
		{ID: "tt3896198", Title: "Guardians of the Galaxy Vol. 2", Year: "2017", Genre: "Action, Adventure", Poster: "https://img.example/gotg2.jpg"},
		{ID: "tt0372784", Title: "Batman Begins", Year: "2005", Genre: "Action, Crime", Poster: "https://img.example/bb.jpg"},
		{ID: "tt1877830", Title: "The Batman", Year: "2022", Genre: "Action, Crime", Poster: "N/A"},
		{ID: "tt0096895", Title: "Batman", Year: "1989", Genre: "Action, Adventure", Poster: "https://img.example/b89.jpg"},
		{ID: "tt0112462", Title: "Batman Forever", Year: "1995", Genre: "Action, Adventure", Poster: "https://img.example/bf.jpg"},
	}
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OMDB_API_KEY", "")

	fake := testsupport.NewOMDbServer(t, fixtureMovies()...)
	cfg := testsupport.NewConfig(t,
		testsupport.WithOMDbServer(fake.BaseURL()),
		testsupport.WithDebounceMillis(5000),
	)
	configPath := filepath.Join(t.TempDir(), "marquee.toml")
	testsupport.WriteConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, omdb: fake, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
