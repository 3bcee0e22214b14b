// Package networth reports on the balance sheet: net worth is the sum of
// active asset balances minus the sum of active liability balances.
// Income and expense accounts track flows, not holdings, so they never
// contribute; archived accounts are history and are skipped too.
package networth

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Service computes and snapshots net worth on top of a Store.
type Service struct {
	store store.Store
	log   *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(st store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log}
}

// Result is one net worth computation, dated the day it ran.
type Result struct {
	Date              model.Date
	TotalAssets       int64
	TotalLiabilities  int64
	NetWorth          int64
	AssetAccounts     int
	LiabilityAccounts int
}

// Calculate computes net worth from current balances.
func (s *Service) Calculate() (Result, error) {
	accounts, err := s.store.Accounts()
	if err != nil {
		return Result{}, err
	}
	r := Result{Date: model.Today()}
	for _, a := range accounts {
		if a.Status != model.AccountStatusActive {
			continue
		}
		switch a.Type {
		case model.AccountTypeAsset:
			r.TotalAssets += a.Balance
			r.AssetAccounts++
		case model.AccountTypeLiability:
			r.TotalLiabilities += a.Balance
			r.LiabilityAccounts++
		}
	}
	r.NetWorth = r.TotalAssets - r.TotalLiabilities
	return r, nil
}

// Snapshot persists the current computation. Snapshots are immutable and
// never deduplicated, so two snapshots on one day are two records.
func (s *Service) Snapshot() (model.NetWorthSnapshot, error) {
	r, err := s.Calculate()
	if err != nil {
		return model.NetWorthSnapshot{}, err
	}
	snap := model.NetWorthSnapshot{
		ID:               id.New(id.KindSnapshot),
		Date:             r.Date,
		TotalAssets:      r.TotalAssets,
		TotalLiabilities: r.TotalLiabilities,
		NetWorth:         r.NetWorth,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.SaveSnapshot(snap); err != nil {
		return model.NetWorthSnapshot{}, err
	}
	s.log.Info("net worth snapshot taken",
		zap.String("id", snap.ID),
		zap.Int64("netWorth", snap.NetWorth))
	return snap, nil
}

// History returns snapshots ordered by date (creation time breaking
// ties), optionally narrowed to an inclusive date range.
func (s *Service) History(r *model.DateRange) ([]model.NetWorthSnapshot, error) {
	snaps, err := s.store.Snapshots()
	if err != nil {
		return nil, err
	}
	if r != nil {
		var filtered []model.NetWorthSnapshot
		for _, snap := range snaps {
			if r.Contains(snap.Date) {
				filtered = append(filtered, snap)
			}
		}
		snaps = filtered
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Date != snaps[j].Date {
			return snaps[i].Date.Before(snaps[j].Date)
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	return snaps, nil
}
