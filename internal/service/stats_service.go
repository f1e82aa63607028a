package service

import (
	"strings"
	"sync"

	"walletguard/internal/entity"
)

// Seed data carried over from the demo deployment; real numbers accumulate on
// top of it in process memory only (no persistent store yet).
var demoWallets = []string{
	"0x742d35cc6634c0532925a3b844bc454e4438f44e",
	"0x8bA1f109551bD432803012645Ac136ddd64DBA72",
	"0x49e833337ecefa0cab47fa4160bed2b8092b5d10",
	"0x8576acc5c05d6ce88f4e49bf65bdf0c62f91353c",
	"0x21a31ee1afc51d94c2efccaa2092ad1028285549",
}

// StatsService tracks coarse usage counters for the stats endpoint.
type StatsService interface {
	RecordAnalysis(address string, scamsFound int)
	Snapshot() entity.StatsSummary
}

// statsServiceImpl is the implementation of StatsService.
type statsServiceImpl struct {
	mu              sync.Mutex
	analyzedWallets map[string]struct{}
	walletsAnalyzed int
	scamsDetected   int
}

// NewStatsService creates a stats service pre-seeded with the demo wallets.
func NewStatsService() StatsService {
	s := &statsServiceImpl{
		analyzedWallets: make(map[string]struct{}, len(demoWallets)),
		walletsAnalyzed: len(demoWallets),
	}
	for _, wallet := range demoWallets {
		s.analyzedWallets[strings.ToLower(wallet)] = struct{}{}
	}
	return s
}

// RecordAnalysis implements the StatsService interface.
func (s *statsServiceImpl) RecordAnalysis(address string, scamsFound int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.walletsAnalyzed++
	s.analyzedWallets[strings.ToLower(address)] = struct{}{}
	s.scamsDetected += scamsFound
}

// Snapshot implements the StatsService interface.
func (s *statsServiceImpl) Snapshot() entity.StatsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.StatsSummary{
		WalletsAnalyzed: s.walletsAnalyzed,
		UsersProtected:  len(s.analyzedWallets),
		ScamsDetected:   s.scamsDetected,
	}
}
