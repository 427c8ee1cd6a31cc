package google

import (
	"reflect"
	"testing"
	"time"
)

func TestDatedFolderName(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 7, 0, time.UTC)
	if got := DatedFolderName(now); got != "2026-08-31_09-05-07" {
		t.Fatalf("DatedFolderName = %q", got)
	}
}

func TestSelectBackupFiles(t *testing.T) {
	names := []string{
		"site-files.tar",
		"db-20260831.sql.gz",
		"notes.txt",
		"private-files.tar.gz",
		"db-20260830.sql.gz",
		"config.json",
	}

	withFiles := SelectBackupFiles(names, true)
	want := []string{
		"db-20260830.sql.gz",
		"db-20260831.sql.gz",
		"private-files.tar.gz",
		"site-files.tar",
	}
	if !reflect.DeepEqual(withFiles, want) {
		t.Fatalf("file backup on: got %v, want %v", withFiles, want)
	}

	dumpsOnly := SelectBackupFiles(names, false)
	wantDumps := []string{
		"db-20260830.sql.gz",
		"db-20260831.sql.gz",
	}
	if !reflect.DeepEqual(dumpsOnly, wantDumps) {
		t.Fatalf("file backup off: got %v, want %v", dumpsOnly, wantDumps)
	}
}

func TestSelectBackupFiles_Empty(t *testing.T) {
	if got := SelectBackupFiles(nil, true); len(got) != 0 {
		t.Fatalf("expected empty selection, got %v", got)
	}
}
