package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.ipm"))
	touch(t, filepath.Join(dir, "a.ipm"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "dir.ipm"), 0755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, "", "", "")
	files, err := fm.DiscoverInputFiles("")
	if err != nil {
		t.Fatalf("DiscoverInputFiles: %v", err)
	}

	want := []string{filepath.Join(dir, "a.ipm"), filepath.Join(dir, "b.ipm")}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("files = %v, want %v", files, want)
	}

	if _, err := fm.DiscoverInputFiles("["); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_{encoding}_{uuid}.xml", map[string]string{
		"original": "T112",
		"encoding": "ebcdic",
	})

	pattern := regexp.MustCompile(`^T112_ebcdic_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.xml$`)
	if !pattern.MatchString(name) {
		t.Errorf("unexpected name %q", name)
	}

	if got := GenerateOutputFileName("{original}", map[string]string{"original": "T112"}); got != "T112.xml" {
		t.Errorf("missing extension not added: %q", got)
	}

	a := GenerateOutputFileName("{uuid}", nil)
	b := GenerateOutputFileName("{uuid}", nil)
	if a == b {
		t.Errorf("names should be unique, got %q twice", a)
	}
}

func TestOriginalName(t *testing.T) {
	if got := OriginalName("/data/in/T112.R111.ipm"); got != "T112.R111" {
		t.Errorf("OriginalName = %q", got)
	}
}

func TestWriteOutputFile(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager("", dir, "", "")

	path, err := fm.WriteOutputFile("out.xml", "<ipm-file/>")
	if err != nil {
		t.Fatalf("WriteOutputFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<ipm-file/>" {
		t.Errorf("read back %q, %v", data, err)
	}
}

func TestArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	archive := filepath.Join(dir, "archive")
	if err := os.Mkdir(in, 0755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(in, "T112.ipm")
	touch(t, src)

	fm := NewFileManager(in, "", archive, "")

	// Disabled archival leaves the file alone.
	if got, err := fm.ArchiveInputFile(src); err != nil || got != src {
		t.Fatalf("ArchiveInputFile disabled = %q, %v", got, err)
	}

	fm.ArchiveOnSuccess = true
	got, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatalf("ArchiveInputFile: %v", err)
	}
	if got != filepath.Join(archive, "T112.ipm") {
		t.Errorf("archive path = %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("input file still present after archival")
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("archived file missing: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(
		filepath.Join(dir, "in"),
		filepath.Join(dir, "out"),
		filepath.Join(dir, "in_archive"),
		filepath.Join(dir, "out_archive"),
	)

	if err := fm.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{fm.InputDir, fm.OutputDir, fm.OutputArchiveDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("%s not created", d)
		}
	}
	if _, err := os.Stat(fm.InputArchiveDir); !os.IsNotExist(err) {
		t.Error("input archive created although archival is disabled")
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		Encoding:        "ebcdic",
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalMessages:   12,
		TotalCorrupted:  1,
		ProcessedFiles: []ProcessedFileInfo{
			{InputFile: "T112.ipm", OutputFile: "T112_x.xml", Messages: 12, Corrupted: 1},
		},
		FailedFilesList: []FailedFileInfo{
			{InputFile: "bad.ipm", ErrorMessage: "no header message found"},
		},
	}, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog: %v", err)
	}

	if filepath.Base(path) != "processing_summary_20261016_090002.txt" {
		t.Errorf("summary path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"Duration:       2s",
		"Total Messages:     12",
		"Corrupted Messages: 1",
		"Input:        T112.ipm",
		"Error:  no header message found",
		"End of Summary",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestArchiveInputFileTimestampSubdirs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	archive := filepath.Join(dir, "archive")
	if err := os.Mkdir(in, 0755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(in, "T112.ipm")
	touch(t, src)

	fm := NewFileManager(in, "", archive, "")
	fm.ArchiveOnSuccess = true
	fm.UseTimestampSubdirs = true

	before := time.Now()
	got, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatalf("ArchiveInputFile: %v", err)
	}

	// Accept either side of a midnight rollover during the call.
	var ok bool
	for _, d := range []time.Time{before, time.Now()} {
		want := filepath.Join(archive, d.Format("2006"), d.Format("01"), d.Format("02"), "T112.ipm")
		ok = ok || got == want
	}
	if !ok {
		t.Errorf("archive path = %q", got)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("archived file missing: %v", err)
	}
}
