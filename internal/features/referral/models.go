// Package referral реализует реферальную программу: приглашения по
// коду с разовым бонусом обеим сторонам.
package referral

import "time"

// Link — зафиксированная реферальная связь.
type Link struct {
	ID         int64
	ReferrerID int64
	ReferredID int64
	CreatedAt  time.Time
}
