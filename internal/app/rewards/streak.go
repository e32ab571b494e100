package rewards

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// MetaStore holds the streak counters. Satisfied by the sqlite store.
type MetaStore interface {
	GetMeta(key string) (string, error)
	SetMeta(key, value string) error
}

// StreakService tracks consecutive days with at least one eco action.
// A day counts when any impact event lands. One free freeze per ISO week
// covers a single missed day; longer gaps reset the streak silently, with
// no guilt notifications.
type StreakService struct {
	store MetaStore
}

// NewStreakService creates a streak service.
func NewStreakService(store MetaStore) *StreakService {
	return &StreakService{store: store}
}

// Current loads the streak state.
func (s *StreakService) Current() (domain.Streak, error) {
	var streak domain.Streak

	days, err := s.store.GetMeta("streak_current")
	if err != nil {
		return streak, fmt.Errorf("get streak_current: %w", err)
	}
	if days != "" {
		streak.CurrentDays, _ = strconv.Atoi(days)
	}

	longest, err := s.store.GetMeta("streak_longest")
	if err != nil {
		return streak, fmt.Errorf("get streak_longest: %w", err)
	}
	if longest != "" {
		streak.LongestDays, _ = strconv.Atoi(longest)
	}

	lastDate, err := s.store.GetMeta("streak_last_date")
	if err != nil {
		return streak, fmt.Errorf("get streak_last_date: %w", err)
	}
	if lastDate != "" {
		ts, _ := strconv.ParseInt(lastDate, 10, 64)
		streak.LastDate = time.Unix(ts, 0).UTC()
	}

	freezeUsed, err := s.store.GetMeta("streak_freeze_used")
	if err != nil {
		return streak, fmt.Errorf("get streak_freeze_used: %w", err)
	}
	streak.FreezeUsed = freezeUsed == "1"

	freezeWeek, err := s.store.GetMeta("streak_freeze_week")
	if err != nil {
		return streak, fmt.Errorf("get streak_freeze_week: %w", err)
	}
	streak.FreezeWeekISO = freezeWeek

	return streak, nil
}

// RecordAction records an eco action for streak purposes.
// Same day: no-op. Consecutive day: extend. One missed day: spend the
// weekly freeze if available, otherwise reset. Longer gap: reset.
func (s *StreakService) RecordAction(day time.Time) error {
	streak, err := s.Current()
	if err != nil {
		return err
	}

	today := day.UTC().Truncate(24 * time.Hour)

	if !streak.LastDate.IsZero() && today.Equal(streak.LastDate.Truncate(24*time.Hour)) {
		return nil
	}

	if streak.LastDate.IsZero() {
		streak.CurrentDays = 1
	} else {
		gap := today.Sub(streak.LastDate.Truncate(24 * time.Hour))

		switch {
		case gap <= 24*time.Hour:
			streak.CurrentDays++

		case gap <= 48*time.Hour:
			currentWeek := isoWeek(today)
			if !streak.FreezeUsed || streak.FreezeWeekISO != currentWeek {
				streak.FreezeUsed = true
				streak.FreezeWeekISO = currentWeek
				streak.CurrentDays++
			} else {
				streak.CurrentDays = 1
			}

		default:
			streak.CurrentDays = 1
		}
	}

	streak.LastDate = today
	if streak.CurrentDays > streak.LongestDays {
		streak.LongestDays = streak.CurrentDays
	}

	// New ISO week restores the freeze
	if streak.FreezeWeekISO != isoWeek(today) {
		streak.FreezeUsed = false
	}

	return s.save(streak)
}

func (s *StreakService) save(streak domain.Streak) error {
	pairs := map[string]string{
		"streak_current":     strconv.Itoa(streak.CurrentDays),
		"streak_longest":     strconv.Itoa(streak.LongestDays),
		"streak_last_date":   strconv.FormatInt(streak.LastDate.Unix(), 10),
		"streak_freeze_week": streak.FreezeWeekISO,
		"streak_freeze_used": "0",
	}
	if streak.FreezeUsed {
		pairs["streak_freeze_used"] = "1"
	}
	for k, v := range pairs {
		if err := s.store.SetMeta(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// isoWeek formats a date as "2025-W23" for the weekly freeze window.
func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
