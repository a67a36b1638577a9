package usecase

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func TestAssembleStaticFirstThenCaptures(t *testing.T) {
	probe := &fakeProbe{symbols: []string{"BBB", "CCC"}}
	a := NewAssembler(probe, newTestLogger(t))

	got := a.Assemble(context.Background(), []string{"AAA", "BBB"}, 3, false)
	want := []string{"AAA", "BBB", "CCC"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("worklist = %v, want %v", got, want)
	}
}

func TestAssembleDedupesExactMatchOnly(t *testing.T) {
	probe := &fakeProbe{symbols: []string{" AAA ", "aaa"}}
	a := NewAssembler(probe, newTestLogger(t))

	// " AAA " trims to an exact duplicate; "aaa" is a distinct symbol.
	got := a.Assemble(context.Background(), []string{"AAA"}, 3, false)
	want := []string{"AAA", "aaa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("worklist = %v, want %v", got, want)
	}
}

func TestAssembleDryRunSkipsProbe(t *testing.T) {
	probe := &fakeProbe{symbols: []string{"CCC"}}
	a := NewAssembler(probe, newTestLogger(t))

	got := a.Assemble(context.Background(), []string{"AAA"}, 3, true)
	if probe.scanCalls() != 0 {
		t.Fatalf("probe called %d times on dry run", probe.scanCalls())
	}
	want := []string{"AAA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("worklist = %v, want %v", got, want)
	}
}

func TestAssembleProbeFaultKeepsStaticList(t *testing.T) {
	probe := &fakeProbe{err: fmt.Errorf("scan backend down")}
	a := NewAssembler(probe, newTestLogger(t))

	got := a.Assemble(context.Background(), []string{"AAA", "BBB"}, 3, false)
	want := []string{"AAA", "BBB"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("worklist = %v, want %v", got, want)
	}
}

func TestAssembleNilProbe(t *testing.T) {
	a := NewAssembler(nil, newTestLogger(t))

	got := a.Assemble(context.Background(), []string{" AAA ", "", "BBB"}, 3, false)
	want := []string{"AAA", "BBB"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("worklist = %v, want %v", got, want)
	}
}

func TestAssembleEmptyStaticList(t *testing.T) {
	probe := &fakeProbe{symbols: []string{"CCC"}}
	a := NewAssembler(probe, newTestLogger(t))

	got := a.Assemble(context.Background(), nil, 3, false)
	want := []string{"CCC"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("worklist = %v, want %v", got, want)
	}
}
