package s3

import (
	"testing"
)

func TestClientKey_WithPrefix(t *testing.T) {
	c := NewWithAPI(nil, "bucket", "/team/")
	if c.Prefix() != "team" {
		t.Fatalf("Prefix() = %q, want team", c.Prefix())
	}
	if got, want := c.Key("docs/a.txt"), "team/docs/a.txt"; got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
	if got := c.relative(c.Key("a/b.txt")); got != "a/b.txt" {
		t.Errorf("relative(Key(a/b.txt)) = %q", got)
	}
}

func TestClientKey_NoPrefix(t *testing.T) {
	c := NewWithAPI(nil, "bucket", "")
	if got := c.Key("docs/"); got != "docs/" {
		t.Errorf("Key(docs/) = %q, want docs/", got)
	}
	if got := c.relative("x"); got != "x" {
		t.Errorf("relative(x) = %q", got)
	}
}
