package redis

import "testing"

func TestKeys(t *testing.T) {
	if got := snapshotKey("abc"); got != "session:abc:snapshot" {
		t.Errorf("snapshotKey = %q", got)
	}
	if got := threatKey("abc"); got != "session:abc:threat" {
		t.Errorf("threatKey = %q", got)
	}
}

func TestNewClientBadURL(t *testing.T) {
	if _, err := NewClient("not a url", 0); err == nil {
		t.Fatal("expected a parse error")
	}
}
