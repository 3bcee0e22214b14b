package model

import "time"

// NetWorthSnapshot captures total assets, total liabilities and their
// difference at a point in time. Snapshots are immutable once written and
// are never deduplicated: several snapshots may share a date.
type NetWorthSnapshot struct {
	ID               string    `json:"id"`
	Date             Date      `json:"date"`
	TotalAssets      int64     `json:"totalAssets"`
	TotalLiabilities int64     `json:"totalLiabilities"`
	NetWorth         int64     `json:"netWorth"`
	CreatedAt        time.Time `json:"createdAt"`
}
