package portfolio

import "github.com/google/uuid"

// Admin returns the configured admin account, if any.
func (p *Portfolio) Admin() (uuid.UUID, bool) {
	if p.admin == nil {
		return uuid.UUID{}, false
	}
	return *p.admin, true
}

// SetAdmin records the admin account. Authorization is the caller's job.
func (p *Portfolio) SetAdmin(admin uuid.UUID) {
	a := admin
	p.admin = &a
}

// Paused reports whether trading is halted.
func (p *Portfolio) Paused() bool {
	return p.paused
}

// SetPaused toggles the trading halt.
func (p *Portfolio) SetPaused(paused bool) {
	p.paused = paused
}

// Version returns the portfolio's schema version.
func (p *Portfolio) Version() uint32 {
	return p.version
}

// MigratedAt returns the timestamp of the last schema migration, if any.
func (p *Portfolio) MigratedAt() (uint64, bool) {
	if p.migratedAt == nil {
		return 0, false
	}
	return *p.migratedAt, true
}

// Initialize stamps a fresh portfolio with the given schema version. It is a
// no-op when a version is already set.
func (p *Portfolio) Initialize(version uint32) {
	if p.version == 0 {
		p.version = version
	}
}

// MigrateSchema advances the schema version and records when it happened.
// Downgrades are ignored.
func (p *Portfolio) MigrateSchema(to uint32, ts uint64) bool {
	if to <= p.version {
		return false
	}
	p.version = to
	t := ts
	p.migratedAt = &t
	return true
}

// RateBucketFor returns the account's sliding-window bucket for the given
// operation kind. A zero bucket means no recorded activity.
func (p *Portfolio) RateBucketFor(user uuid.UUID, kind string) RateBucket {
	return p.rateBuckets[rateKey{user, kind}]
}

// SetRateBucket overwrites the account's bucket for the given kind.
func (p *Portfolio) SetRateBucket(user uuid.UUID, kind string, b RateBucket) {
	p.rateBuckets[rateKey{user, kind}] = b
}
