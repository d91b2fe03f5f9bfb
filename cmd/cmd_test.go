package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/testutil/ipmtest"
)

// execute runs the root command with args and a quiet explicit config.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "log_level: error\n" +
		"input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"output_archive_dir: " + filepath.Join(dir, "summary") + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "T112.ipm")
	data := ipmtest.TextBatch(
		ipmtest.Frame(t, layout.Text, ipmtest.Header()),
		ipmtest.Frame(t, layout.Text, ipmtest.Presentment("CYCLE0000001")),
		ipmtest.Frame(t, layout.Text, ipmtest.Trailer()),
	)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, dir, "convert", "-f", path, "-e", "ascii")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, `<ipm-file name="T112.ipm" messages="1">`) {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, dir, "convert", "-f", path, "-e", "utf16"); err == nil {
		t.Error("expected an error for an unknown encoding")
	}
}

func TestProcessCommandNoFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "in"), 0755); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, dir, "process", "-e", "ebcdic")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(out, "No IPM files found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "All tables are valid.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
