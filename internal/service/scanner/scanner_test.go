package scanner

import (
	"testing"

	"WatchPull/internal/service/marketdata"
)

func TestBreakdownPlunge(t *testing.T) {
	m := marketdata.Mover{Symbol: "AAA", ChangePct: -6.2, Price: 10}
	if !breakdown(m, m.Price) {
		t.Fatalf("plunge of -6.2%% not flagged")
	}
	m.ChangePct = -4.9
	if breakdown(m, m.Price) {
		t.Fatalf("-4.9%% flagged without volume confirmation")
	}
}

func TestBreakdownBelowMA20OnVolume(t *testing.T) {
	m := marketdata.Mover{Symbol: "AAA", ChangePct: -2.0, Price: 9.5, MA20: 10, VolumeRatio: 2.5}
	if !breakdown(m, m.Price) {
		t.Fatalf("MA20 break on surge not flagged")
	}

	m.VolumeRatio = 1.2
	if breakdown(m, m.Price) {
		t.Fatalf("MA20 break flagged without volume surge")
	}

	m.VolumeRatio = 2.5
	m.MA20 = 0 // no MA data
	if breakdown(m, m.Price) {
		t.Fatalf("flagged with no MA20 available")
	}
}

func TestBreakdownLivePriceOverride(t *testing.T) {
	// board shows the symbol above MA20, live price already below it
	m := marketdata.Mover{Symbol: "AAA", ChangePct: -1.0, Price: 10.5, MA20: 10, VolumeRatio: 3.0}
	if breakdown(m, m.Price) {
		t.Fatalf("flagged while above MA20")
	}
	if !breakdown(m, 9.8) {
		t.Fatalf("live price below MA20 not flagged")
	}
}
