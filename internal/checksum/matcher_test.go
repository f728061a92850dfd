package checksum

import (
	"errors"
	"testing"
)

func TestFingerprintIgnoresOrder(t *testing.T) {
	a := []Entry{{"1.pdf", []byte("x")}, {"1.csv", []byte("y")}}
	b := []Entry{{"1.csv", []byte("y")}, {"1.pdf", []byte("x")}}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, _ := Fingerprint(b)
	if fa != fb {
		t.Errorf("order changed fingerprint: %s vs %s", fa, fb)
	}
}

func TestFingerprintSeparatesFields(t *testing.T) {
	f1, _ := Fingerprint([]Entry{{"ab", []byte("c")}})
	f2, _ := Fingerprint([]Entry{{"a", []byte("bc")}})
	if f1 == f2 {
		t.Error("shifted boundary produced the same fingerprint")
	}
}

func TestFingerprintEmpty(t *testing.T) {
	if _, err := Fingerprint(nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("err = %v", err)
	}
}

func TestChecksumMatcher(t *testing.T) {
	batch := []Entry{{"153289.pdf", []byte("report")}}
	m := NewChecksumMatcher("")

	if ok, err := m.Match(batch); err != nil || ok {
		t.Fatalf("fresh matcher: ok=%v err=%v", ok, err)
	}
	sum, _ := Fingerprint(batch)
	m.Remember(sum)
	if ok, _ := m.Match(batch); !ok {
		t.Error("remembered batch did not match")
	}
	changed := []Entry{{"153289.pdf", []byte("report v2")}}
	if ok, _ := m.Match(changed); ok {
		t.Error("changed batch matched")
	}
	if m.Expected() != sum {
		t.Errorf("Expected = %s", m.Expected())
	}
}
