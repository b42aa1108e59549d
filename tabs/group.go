package tabs

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/lukemcguire/grouptabs/activity"
)

// Bucket is a grouping key with its tab ids in first-appearance order.
type Bucket struct {
	Key    string
	TabIDs []int
}

// Buckets partitions tabs by key(URL). Buckets come out in the order their
// key first appears; tabs with an empty key are left out.
func Buckets(tabs []Tab, key func(rawURL string) string) []Bucket {
	var out []Bucket
	index := make(map[string]int)
	for _, t := range tabs {
		k := key(t.URL)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Bucket{Key: k})
		}
		out[i].TabIDs = append(out[i].TabIDs, t.ID)
	}
	return out
}

// GroupPlan is a group to create.
type GroupPlan struct {
	Title     string
	TabIDs    []int
	Color     Color
	Collapsed bool
}

func colorAt(colors []Color, n int) Color {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return colors[n%len(colors)]
}

// PlanDomainGroups turns buckets into group plans in descending key order.
// Applying each plan by moving it directly after the pinned tabs leaves the
// groups in ascending order. Single-tab buckets are skipped unless
// singletons is set. Every group except the one holding activeTabID starts
// collapsed.
func PlanDomainGroups(buckets []Bucket, activeTabID int, colors []Color, singletons bool) []GroupPlan {
	ordered := slices.Clone(buckets)
	slices.SortStableFunc(ordered, func(a, b Bucket) int {
		return strings.Compare(b.Key, a.Key)
	})

	var plans []GroupPlan
	for _, b := range ordered {
		if len(b.TabIDs) == 1 && !singletons {
			continue
		}
		plans = append(plans, GroupPlan{
			Title:     b.Key,
			TabIDs:    b.TabIDs,
			Color:     colorAt(colors, len(plans)),
			Collapsed: !slices.Contains(b.TabIDs, activeTabID),
		})
	}
	return plans
}

// Recency labels, from most to least recent.
const (
	LabelLastMinute    = "Last Minute"
	LabelLast5Minutes  = "Last 5 Minutes"
	LabelLast30Minutes = "Last 30 Minutes"
	LabelLastHour      = "Last Hour"
	LabelLastHalfDay   = "Last Half Day"
	LabelToday         = "Today"
	LabelYesterday     = "Yesterday"
	LabelThisWeek      = "This Week"
	LabelLastWeek      = "Last Week"
	LabelThisMonth     = "This Month"
	LabelLastMonth     = "Last Month"
	LabelOlder         = "Older"
)

// RecencyOrder lists the recency labels in the order their groups are made.
var RecencyOrder = []string{
	LabelLastMinute, LabelLast5Minutes, LabelLast30Minutes, LabelLastHour,
	LabelLastHalfDay, LabelToday, LabelYesterday, LabelThisWeek,
	LabelLastWeek, LabelThisMonth, LabelLastMonth, LabelOlder,
}

// RecencyLabel buckets last relative to now. Calendar comparisons use now's
// location. A zero last is Older.
func RecencyLabel(now, last time.Time) string {
	if last.IsZero() {
		return LabelOlder
	}
	last = last.In(now.Location())

	switch diff := now.Sub(last); {
	case diff < time.Minute:
		return LabelLastMinute
	case diff < 5*time.Minute:
		return LabelLast5Minutes
	case diff < 30*time.Minute:
		return LabelLast30Minutes
	case diff < time.Hour:
		return LabelLastHour
	case diff < 12*time.Hour:
		return LabelLastHalfDay
	}

	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()
	if ny == ly && nm == lm && nd == ld {
		return LabelToday
	}

	switch days := calendarDays(now, last); {
	case days == 1:
		return LabelYesterday
	case days <= 7:
		return LabelThisWeek
	case days <= 14:
		return LabelLastWeek
	}

	if ny == ly && nm == lm {
		return LabelThisMonth
	}
	if (ny == ly && nm == lm+1) || (nm == time.January && lm == time.December && ny == ly+1) {
		return LabelLastMonth
	}
	return LabelOlder
}

// calendarDays counts midnights between last and now. Rounding absorbs the
// 23 and 25 hour days around DST changes.
func calendarDays(now, last time.Time) int {
	loc := now.Location()
	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()
	a := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)
	b := time.Date(ly, lm, ld, 0, 0, 0, 0, loc)
	return int(math.Round(a.Sub(b).Hours() / 24))
}

// PlanRecencyGroups labels the already sorted tabs and returns one plan per
// non-empty label in RecencyOrder. Single tabs get a group too.
func PlanRecencyGroups(sorted []Tab, data activity.Data, now time.Time, activeTabID int, colors []Color) []GroupPlan {
	labelled := make(map[string][]int)
	for _, t := range sorted {
		label := RecencyLabel(now, data.LastAccessed(t.ID))
		labelled[label] = append(labelled[label], t.ID)
	}

	var plans []GroupPlan
	for _, label := range RecencyOrder {
		ids := labelled[label]
		if len(ids) == 0 {
			continue
		}
		plans = append(plans, GroupPlan{
			Title:     label,
			TabIDs:    ids,
			Color:     colorAt(colors, len(plans)),
			Collapsed: !slices.Contains(ids, activeTabID),
		})
	}
	return plans
}
