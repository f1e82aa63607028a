package service

import "testing"

func TestStatsServiceSeededSnapshot(t *testing.T) {
	svc := NewStatsService()
	snap := svc.Snapshot()

	if snap.WalletsAnalyzed != 5 || snap.UsersProtected != 5 {
		t.Errorf("expected seeded counters of 5, got analyzed=%d protected=%d",
			snap.WalletsAnalyzed, snap.UsersProtected)
	}
	if snap.ScamsDetected != 0 {
		t.Errorf("expected no seeded scams, got %d", snap.ScamsDetected)
	}
}

func TestStatsServiceRecordAnalysis(t *testing.T) {
	svc := NewStatsService()

	svc.RecordAnalysis(testWallet, 2)
	svc.RecordAnalysis(testWallet, 0) // repeat wallet, new analysis

	snap := svc.Snapshot()
	if snap.WalletsAnalyzed != 7 {
		t.Errorf("expected 7 analyses, got %d", snap.WalletsAnalyzed)
	}
	if snap.UsersProtected != 6 {
		t.Errorf("expected 6 distinct wallets, got %d", snap.UsersProtected)
	}
	if snap.ScamsDetected != 2 {
		t.Errorf("expected 2 scams recorded, got %d", snap.ScamsDetected)
	}
}

func TestStatsServiceDistinctWalletsCaseInsensitive(t *testing.T) {
	svc := NewStatsService()

	svc.RecordAnalysis("0xABCDEF1234567890abcdef1234567890ABCDEF12", 0)
	svc.RecordAnalysis("0xabcdef1234567890abcdef1234567890abcdef12", 0)

	if snap := svc.Snapshot(); snap.UsersProtected != 6 {
		t.Errorf("case variants of one wallet must count once, got %d", snap.UsersProtected)
	}
}
