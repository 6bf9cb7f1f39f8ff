package main

import (
	"io"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"marquee/internal/render"
)

func decodeFrames(t *testing.T, out string) []render.FrameJSON {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(out))
	var frames []render.FrameJSON
	for {
		var frame render.FrameJSON
		err := dec.Decode(&frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode frames: %v", err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestBrowseScript(t *testing.T) {
	env := setupCLITestEnv(t)
	script := strings.Join([]string{
		"b",
		"bat",
		"Batman",
		":year 2005",
		":sort alphabetical-az",
		":year",
		":home",
		":quit",
		"ignored after quit",
	}, "\n") + "\n"

	out, _, err := runCLI(t, []string{"browse", "--json"}, env.configPath, script)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	frames := decodeFrames(t, out)
	if len(frames) != 6 {
		t.Fatalf("expected 6 settled frames, got %d: %q", len(frames), out)
	}

	if frames[0].Title != "Search results" || len(frames[0].Records) != 2 {
		t.Fatalf("unexpected startup frame %+v", frames[0])
	}
	if frames[1].Title != "Search results for 'batman'" || len(frames[1].Records) != 4 {
		t.Fatalf("unexpected search frame %+v", frames[1])
	}
	if diff := cmp.Diff([]string{"Batman Begins"}, titles(frames[2])); diff != "" {
		t.Fatalf("year filtered titles (-want +got):\n%s", diff)
	}
	if frames[3].Sort != "alphabetical-az" || frames[3].YearFilter == nil {
		t.Fatalf("expected sort applied on top of the year filter, got %+v", frames[3])
	}
	want := []string{"Batman", "Batman Begins", "Batman Forever", "The Batman"}
	if diff := cmp.Diff(want, titles(frames[4])); diff != "" {
		t.Fatalf("sorted titles (-want +got):\n%s", diff)
	}
	home := frames[5]
	if home.Title != "Search results" || home.Sort != "default" || home.YearFilter != nil || home.Query != "" {
		t.Fatalf("unexpected home frame %+v", home)
	}

	// the second default load is served from the metadata cache
	if diff := cmp.Diff([]string{"guardians of the galaxy", "batman"}, env.omdb.Searches()); diff != "" {
		t.Fatalf("searches (-want +got):\n%s", diff)
	}
}

func TestBrowseBlankLineRestoresDefault(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"browse", "--json"}, env.configPath, "batman\n:year 1989\n\n")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	frames := decodeFrames(t, out)
	last := frames[len(frames)-1]
	if last.Title != "Search results" || last.YearFilter != nil {
		t.Fatalf("expected default view with no year filter, got %+v", last)
	}
	if len(last.Records) != 2 {
		t.Fatalf("expected default records, got %d", len(last.Records))
	}
}

func TestBrowseReportsBadCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	_, stderr, err := runCLI(t, []string{"browse", "--json"}, env.configPath, ":year soon\n:sort sideways\n:dance\n")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	requireContains(t, stderr, `invalid year "soon"`)
	requireContains(t, stderr, "unknown sort mode")
	requireContains(t, stderr, `unknown command "dance"`)
}
