package domain

// Unlimited disables a quota limit
const Unlimited int64 = -1

// QuotaCounters holds a user's usage and limits
type QuotaCounters struct {
	UserID         string
	UsedQuotaBytes int64
	FileCount      int64
	QuotaBytes     int64
	FileCountQuota int64
}

// EffectiveQuotaBytes returns the byte limit, falling back to def when the row has none
func (q QuotaCounters) EffectiveQuotaBytes(def int64) int64 {
	if q.QuotaBytes == 0 {
		return def
	}
	return q.QuotaBytes
}

// EffectiveFileCountQuota returns the file count limit, falling back to def when the row has none
func (q QuotaCounters) EffectiveFileCountQuota(def int64) int64 {
	if q.FileCountQuota == 0 {
		return def
	}
	return q.FileCountQuota
}

// CheckAdmission verifies that an upload of size bytes may start under the given limits.
// Usage already at a limit, or a declared size that would cross the byte limit, is
// rejected. Unlimited skips the check.
func (q QuotaCounters) CheckAdmission(size, defaultQuota, defaultFileCount int64) error {
	if limit := q.EffectiveQuotaBytes(defaultQuota); limit != Unlimited && (q.UsedQuotaBytes >= limit || q.UsedQuotaBytes+size > limit) {
		return ErrQuotaExceeded
	}
	if limit := q.EffectiveFileCountQuota(defaultFileCount); limit != Unlimited && q.FileCount >= limit {
		return ErrFileCountLimit
	}
	return nil
}
