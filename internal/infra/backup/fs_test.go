package backup

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestFSStore_RoundTrip(t *testing.T) {
	store, err := NewFSStore(FSConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	ctx := context.Background()
	payload := []byte("binary payload \x00\x01\x02 content")

	if err := store.Write(ctx, "1.2.840.123/instance-1", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rc, err := store.Read(ctx, "1.2.840.123/instance-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
}

func TestFSStore_Delete(t *testing.T) {
	store, err := NewFSStore(FSConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Write(ctx, "key-1", strings.NewReader("data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := store.Delete(ctx, "key-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Read(ctx, "key-1"); err == nil {
		t.Error("expected read after delete to fail")
	}

	// Deleting twice reports an error
	if err := store.Delete(ctx, "key-1"); err == nil {
		t.Error("expected second delete to fail")
	}
}

func TestFSStore_ReadMissing(t *testing.T) {
	store, err := NewFSStore(FSConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if _, err := store.Read(context.Background(), "missing"); err == nil {
		t.Error("expected read of missing key to fail")
	}
}

func TestFSStore_Overwrite(t *testing.T) {
	store, err := NewFSStore(FSConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Write(ctx, "key", strings.NewReader("first")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Write(ctx, "key", strings.NewReader("second")); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	rc, err := store.Read(ctx, "key")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}
}
