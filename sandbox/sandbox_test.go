package sandbox

import (
	"reflect"
	"testing"
)

func TestCommand_NetworkNone(t *testing.T) {
	got := Command("localops-sandbox-runner:latest", "/tmp/ws", "pytest -q", false)
	want := []string{
		"docker", "run", "--rm",
		"--network", "none",
		"--cpus", "1.0",
		"--memory", "512m",
		"--pids-limit", "128",
		"--cap-drop=ALL",
		"--security-opt", "no-new-privileges",
		"-v", "/tmp/ws:/workspace",
		"-w", "/workspace",
		"localops-sandbox-runner:latest",
		"sh", "-lc", "pytest -q",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Command() = %v, want %v", got, want)
	}
}

func TestCommand_NetworkBridge(t *testing.T) {
	got := Command("img", "/ws", "npm install", true)
	for i, arg := range got {
		if arg == "--network" {
			if got[i+1] != "bridge" {
				t.Errorf("network mode = %s, want bridge", got[i+1])
			}
			return
		}
	}
	t.Fatal("--network flag not found")
}
