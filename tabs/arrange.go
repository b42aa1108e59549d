package tabs

import (
	"context"
	"fmt"

	"github.com/lukemcguire/grouptabs/result"
)

// SortByURL orders the target tabs of the current window by URL.
func (m *Manager) SortByURL(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandSortURL)
	return r.finish(r.sortBy(ctx, SortByURL))
}

// SortByDomain orders the target tabs by domain, subdomains included.
func (m *Manager) SortByDomain(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandSortDomain)
	return r.finish(r.sortBy(ctx, m.domainSort(false)))
}

// SortByDomainIgnoreSubDomain orders the target tabs by registrable domain.
func (m *Manager) SortByDomainIgnoreSubDomain(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandSortApex)
	return r.finish(r.sortBy(ctx, m.domainSort(true)))
}

// SortByLastAccessed orders the target tabs most recently used first.
func (m *Manager) SortByLastAccessed(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandSortRecent)

	data, err := m.cfg.Activity.Snapshot(ctx)
	if err != nil {
		return r.finish(err)
	}
	return r.finish(r.sortBy(ctx, func(tabs []Tab) []Tab {
		return SortByLastAccessed(tabs, data)
	}))
}

func (m *Manager) domainKey(ignoreSubdomain bool) func(string) string {
	if ignoreSubdomain {
		return m.cfg.Keyer.Apex
	}
	return m.cfg.Keyer.Full
}

func (m *Manager) domainSort(ignoreSubdomain bool) func([]Tab) []Tab {
	key := m.domainKey(ignoreSubdomain)
	return func(tabs []Tab) []Tab { return SortByKey(tabs, key) }
}

// sortBy queries the target tabs, orders them and moves them into place.
func (r *run) sortBy(ctx context.Context, order func([]Tab) []Tab) error {
	tabs, err := r.query(ctx, targetQuery())
	if err != nil {
		return err
	}
	pinned, _, err := r.layout(ctx)
	if err != nil {
		return err
	}
	return r.moveInOrder(ctx, order(tabs), pinned)
}

// moveInOrder moves tabs to consecutive indexes starting at offset.
func (r *run) moveInOrder(ctx context.Context, tabs []Tab, offset int) error {
	for i, t := range tabs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.try(ctx, "move tab", t.ID, t.WindowID, func(ctx context.Context) error {
			return r.m.browser.MoveTab(ctx, t.ID, offset+i)
		}) {
			r.report.Moved++
			r.report.Tabs = append(r.report.Tabs, result.TabRef{ID: t.ID, URL: t.URL})
		}
	}
	return nil
}

// GroupByDomain sorts the target tabs by domain and puts each domain with
// more than one tab into its own group.
func (m *Manager) GroupByDomain(ctx context.Context, ignoreSubdomain bool) (*result.Report, error) {
	command := CommandGroupDomain
	if ignoreSubdomain {
		command = CommandGroupApex
	}
	r := m.begin(command)

	if err := r.sortBy(ctx, m.domainSort(ignoreSubdomain)); err != nil {
		return r.finish(err)
	}

	tabs, err := r.query(ctx, targetQuery())
	if err != nil {
		return r.finish(err)
	}
	pinned, activeID, err := r.layout(ctx)
	if err != nil {
		return r.finish(err)
	}

	buckets := Buckets(tabs, m.domainKey(ignoreSubdomain))
	plans := PlanDomainGroups(buckets, activeID, m.cfg.Colors, m.cfg.GroupSingletons)
	m.cfg.Logger.Debug("planned domain groups", "tabs", len(tabs), "buckets", len(buckets), "groups", len(plans))

	return r.finish(r.applyPlans(ctx, plans, tabs, pinned))
}

// GroupByLastAccessed groups the target tabs into recency buckets, most
// recent first, and orders the tabs within them.
func (m *Manager) GroupByLastAccessed(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandGroupRecent)

	tabs, err := r.query(ctx, targetQuery())
	if err != nil {
		return r.finish(err)
	}
	pinned, activeID, err := r.layout(ctx)
	if err != nil {
		return r.finish(err)
	}
	data, err := m.cfg.Activity.Snapshot(ctx)
	if err != nil {
		return r.finish(err)
	}

	sorted := SortByLastAccessed(tabs, data)
	plans := PlanRecencyGroups(sorted, data, m.cfg.Now(), activeID, m.cfg.Colors)

	// Each plan lands right after the pinned tabs, so apply the oldest
	// first to leave the most recent group leftmost.
	reversed := make([]GroupPlan, len(plans))
	for i, p := range plans {
		reversed[len(plans)-1-i] = p
	}
	if err := r.applyPlans(ctx, reversed, tabs, pinned); err != nil {
		return r.finish(err)
	}
	return r.finish(r.moveInOrder(ctx, sorted, pinned))
}

// applyPlans creates, styles and positions one group per plan.
func (r *run) applyPlans(ctx context.Context, plans []GroupPlan, tabs []Tab, pinned int) error {
	byID := make(map[int]Tab, len(tabs))
	for _, t := range tabs {
		byID[t.ID] = t
	}

	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return err
		}

		var groupID int
		if !r.try(ctx, "group tabs", p.TabIDs[0], 0, func(ctx context.Context) error {
			var err error
			groupID, err = r.m.browser.Group(ctx, p.TabIDs)
			return err
		}) {
			continue
		}

		props := GroupProps{Title: p.Title, Color: p.Color, Collapsed: p.Collapsed}
		r.try(ctx, "update group", 0, 0, func(ctx context.Context) error {
			return r.m.browser.UpdateGroup(ctx, groupID, props)
		})
		r.try(ctx, "move group", 0, 0, func(ctx context.Context) error {
			return r.m.browser.MoveGroup(ctx, groupID, pinned)
		})

		g := result.GroupResult{
			ID:        groupID,
			Title:     p.Title,
			Color:     string(p.Color),
			Collapsed: p.Collapsed,
		}
		for _, id := range p.TabIDs {
			g.Tabs = append(g.Tabs, result.TabRef{ID: id, URL: byID[id].URL})
		}
		r.report.Groups = append(r.report.Groups, g)
	}
	return nil
}

// Ungroup removes every unpinned http(s) tab of the current window from
// its group.
func (m *Manager) Ungroup(ctx context.Context) (*result.Report, error) {
	r := m.begin(CommandUngroup)

	tabs, err := r.query(ctx, Query{CurrentWindow: true, Pinned: boolPtr(false), HTTPOnly: true})
	if err != nil {
		return r.finish(err)
	}

	var grouped []Tab
	for _, t := range tabs {
		if t.Grouped() {
			grouped = append(grouped, t)
		}
	}
	if len(grouped) == 0 {
		r.report.Message = "No grouped tabs"
		return r.finish(nil)
	}

	if r.try(ctx, "ungroup tabs", 0, 0, func(ctx context.Context) error {
		return m.browser.Ungroup(ctx, tabIDs(grouped))
	}) {
		r.report.Moved = len(grouped)
		r.report.Tabs = refs(grouped)
		r.report.Message = fmt.Sprintf("Ungrouped %s", result.Plural(len(grouped), "tab"))
	}
	return r.finish(nil)
}
