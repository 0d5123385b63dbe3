package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("エッフェル塔", 3); got != "エッフ..." {
		t.Errorf("multi-byte truncate got %s", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  The Moon\n\tlanding   happened  ")
	if got != "The Moon landing happened" {
		t.Errorf("got %q", got)
	}
	if CollapseWhitespace(" \n ") != "" {
		t.Error("blank input should collapse to empty")
	}
}
