package escpos

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBuildReceipt_Golden(t *testing.T) {
	t.Parallel()

	g := golden(t)
	g.Assert(t, "receipt_basic", BuildReceipt("Build a lamp that prints ideas", "idea-7", DefaultProfile()))
}

func TestBuildReceipt_Golden_NoID(t *testing.T) {
	t.Parallel()

	g := golden(t)
	g.Assert(t, "receipt_no_id", BuildReceipt("hello", "", DefaultProfile()))
}

func TestBuildReceipt_Framing(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	got := BuildReceipt("hello", "", p)

	if !bytes.HasPrefix(got, Init) {
		t.Fatalf("receipt does not start with init")
	}
	if !bytes.HasSuffix(got, CutFull) {
		t.Fatalf("receipt does not end with full cut")
	}
	if !bytes.Contains(got, []byte("NEW IDEA")) {
		t.Fatalf("receipt missing title")
	}
	if !bytes.Contains(got, []byte("* * *")) {
		t.Fatalf("receipt missing footer")
	}
}

func TestBuildReceipt_NarrowProfileUsesNarrowArt(t *testing.T) {
	t.Parallel()

	narrow := BuildReceipt("x", "", DefaultProfile())
	if !bytes.Contains(narrow, []byte("| O   O |")) {
		t.Fatalf("narrow profile did not use narrow header art")
	}

	wide := BuildReceipt("x", "", Profile{CharsPerLine: 48, FeedLinesBeforeCut: 4, Cut: CutTypeFull})
	if !bytes.Contains(wide, []byte("|  O  O  |")) {
		t.Fatalf("wide profile did not use wide header art")
	}
}

func TestBuildReceipt_CutVariants(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()

	p.Cut = CutTypePartial
	if got := BuildReceipt("x", "", p); !bytes.HasSuffix(got, CutPartial) {
		t.Fatalf("partial cut not applied")
	}

	p.Cut = CutTypeNone
	got := BuildReceipt("x", "", p)
	if bytes.HasSuffix(got, CutFull) || bytes.HasSuffix(got, CutPartial) {
		t.Fatalf("cut emitted for CutTypeNone")
	}
	if !bytes.HasSuffix(got, Feed(p.FeedLinesBeforeCut)) {
		t.Fatalf("feed must still terminate an uncut receipt")
	}
}

func TestBuildTestReceipt(t *testing.T) {
	t.Parallel()

	got := BuildTestReceipt(DefaultProfile())
	if !bytes.Contains(got, []byte("ID: TEST-001")) {
		t.Fatalf("test receipt missing fixed id")
	}
}
