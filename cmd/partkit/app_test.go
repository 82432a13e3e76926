package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testApp() (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewApp(out, slog.New(slog.DiscardHandler)), out
}

func runFile(t *testing.T, cfg *Config) (string, error) {
	t.Helper()
	app, out := testApp()
	err := app.Run(cfg)
	return out.String(), err
}

// TestExamplesLoad runs each example through the loader that matches its
// extension and checks the result validates cleanly.
func TestExamplesLoad(t *testing.T) {
	tests := []struct {
		file  string
		parts int
	}{
		{"rover.pk", 6},
		{"rover.cfg", 4},
		{"rover.hcl", 2},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("..", "..", "examples", tt.file)
			src, err := os.ReadFile(path)
			require.NoError(t, err)

			app, out := testApp()
			asm, err := app.Load(path, src)
			require.NoError(t, err)
			require.Equal(t, tt.parts, asm.Len())
			require.Equal(t, "chassis", asm.Part(asm.Root()).Name)

			require.NoError(t, app.Validate(asm))
			require.Contains(t, out.String(), "ok (0 findings)")
		})
	}
}

func TestShow(t *testing.T) {
	out, err := runFile(t, &Config{Command: "show", Path: "../../examples/rover.cfg"})
	require.NoError(t, err)
	require.Contains(t, out, "assembly rover: 4 parts, root chassis")
	require.Contains(t, out, "[1] tank parent=chassis pos=(0, 2, 0) scale=1")
	require.Contains(t, out, "node top (0, 0.5, 0) -> tank")
	require.Contains(t, out, "surface (0.25, 0, 0) -> chassis")
	require.Contains(t, out, "module Controller group=1")
	require.Contains(t, out, "    | "+strings.Repeat(" ", 12)+"headlights\n")
}

func TestRescaleCommand(t *testing.T) {
	out, err := runFile(t, &Config{Command: "rescale", Path: "../../examples/rover.cfg", Part: "chassis", To: 2})
	require.NoError(t, err)
	require.Contains(t, out, "rescaled chassis from 1 to 2: 3 nodes")
	require.Contains(t, out, "neighbor tank by (0, 0.5, 0) via node top")
	require.Contains(t, out, "neighbor wheelL by (-1, 0, 0) via node left")
	require.Contains(t, out, "tank at (0, 2.5, 0)")
	require.Contains(t, out, "wheelL at (-2.25, 1, 0)")
	require.Contains(t, out, "chassis at (0, 1, 0)")

	out, err = runFile(t, &Config{Command: "rescale", Path: "../../examples/rover.cfg", Part: "tank", From: 1, To: 2})
	require.NoError(t, err)
	require.Contains(t, out, "self     tank by ")
	require.Contains(t, out, "root     chassis by (0, -0.5, 0) via node bottom")
	require.Contains(t, out, "tank at (0, 2, 0)")
	require.Contains(t, out, "chassis at (0, 0.5, 0)")
	require.Contains(t, out, "wheelL at (-1.25, 0.5, 0)", "wheels ride with the chassis")

	out, err = runFile(t, &Config{Command: "rescale", Path: "../../examples/rover.cfg", Part: "chassis", To: 2, Passive: true})
	require.NoError(t, err)
	require.Contains(t, out, "tank at (0, 2, 0)")

	_, err = runFile(t, &Config{Command: "rescale", Path: "../../examples/rover.cfg", Part: "ghost", To: 2})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
}

func TestGroupCommand(t *testing.T) {
	out, err := runFile(t, &Config{Command: "group", Path: "../../examples/rover.pk", Group: 1})
	require.NoError(t, err)
	require.Contains(t, out, "group 1: WheelMotor on wheelFL\ngroup 1: WheelBrakes on wheelFL\ngroup 1: WheelMotor on wheelRL\n")
	require.Contains(t, out, "simulating: applied 4, failed 0")
	require.NotContains(t, out, "wheelFR")

	out, err = runFile(t, &Config{Command: "group", Path: "../../examples/rover.pk", Group: 2, Editing: true})
	require.NoError(t, err)
	require.Contains(t, out, "editing: applied 4, failed 0")

	_, err = runFile(t, &Config{Command: "group", Path: "../../examples/rover.pk", Group: 0})
	require.Error(t, err)
}

func TestProbeCommand(t *testing.T) {
	out, err := runFile(t, &Config{Command: "probe", Path: "../../examples/rover.cfg", Origin: "0, 5, 0", Dir: "0, -1, 0"})
	require.NoError(t, err)
	require.Contains(t, out, "chassis node top: hit (0, 1.5, 0)")
	require.Contains(t, out, "tank node bottom: hit (0, 1.5, 0)")
	require.Contains(t, out, "2 hits")

	_, err = runFile(t, &Config{Command: "probe", Path: "../../examples/rover.cfg", Origin: "0, x, 0", Dir: "0, -1, 0"})
	require.Error(t, err)
}

func TestLoadReportsEvalErrors(t *testing.T) {
	app, _ := testApp()
	_, err := app.Load("broken.pk", []byte(`(part "a") (node "ghost" "top")`))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Contains(t, exitErr.Message, "broken.pk")

	_, err = app.Load("broken.cfg", []byte("PART\n{\n"))
	require.Error(t, err)
}

func TestMeshCommand(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "meshes.json")
	out, err := runFile(t, &Config{Command: "mesh", Path: "../../examples/rover.cfg", Cells: 12, Out: outPath})
	require.NoError(t, err)
	require.Contains(t, out, "chassis: ")
	require.Contains(t, out, "wheelR: ")
	require.Regexp(t, `chassis: [1-9]\d* triangles, bounds \(`, out)
	require.Contains(t, out, "4 meshes")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var meshes []struct {
		PartName string    `json:"partName"`
		Vertices []float32 `json:"vertices"`
	}
	require.NoError(t, json.Unmarshal(data, &meshes))
	require.Len(t, meshes, 4)
	require.Equal(t, "chassis", meshes[0].PartName)
	require.NotEmpty(t, meshes[0].Vertices)
}
