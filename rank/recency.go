package rank

import "time"

// monthHours 按 30 天折算一个月，用于新片加成的粗粒度月龄。
const monthHours = 24 * 30

// RecencyBonus 返回新片加成：上映 6 个月内为 (6 - 月龄) × 2，否则为 0。
// ReleaseDate 未知时不产生加成。
func RecencyBonus(release *time.Time, now time.Time) float64 {
	if release == nil {
		return 0
	}
	months := now.Sub(*release).Hours() / monthHours
	if months < 0 {
		months = 0
	}
	if months >= 6 {
		return 0
	}
	return (6 - months) * 2
}
