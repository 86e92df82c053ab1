package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestVersionCommand(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{VersionCommand("abc123")},
	}

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err := app.Run([]string{"localopsd", "version"})
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatalf("version command: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	out := buf.String()
	if !strings.Contains(out, "abc123") {
		t.Errorf("output = %q, want commit abc123", out)
	}
}
