package twitter

import (
	"sort"
	"strings"
	"time"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/frequency"
)

const (
	topAuditIPsLimit  = 10
	recentLoginsLimit = 20
	loginDateLayout   = time.RFC3339
)

// Login is one audited login.
type Login struct {
	IP string    `json:"ip"`
	At time.Time `json:"at,omitzero"`
}

// IPAuditResult summarizes the login audit log.
type IPAuditResult struct {
	Total        int             `json:"total"`
	UniqueIPs    int             `json:"uniqueIps"`
	TopIPs       frequency.Table `json:"topIps"`
	LoginsByHour [24]int         `json:"loginsByHour"`
	RecentLogins []Login         `json:"recentLogins"`
}

// buildIPAudit skips entries without a login address. Recent logins are newest first; logins
// without a timestamp sort last.
func (parser *Parser) buildIPAudit(items []ipAuditItem) (IPAuditResult, error) {
	logins := []Login{}
	addresses := []string{}
	events := []activity.Event{}
	for _, item := range items {
		address := strings.TrimSpace(item.IPAudit.LoginIP)
		if address == "" {
			continue
		}
		login := Login{IP: address, At: parseTime(loginDateLayout, item.IPAudit.CreatedAt)}
		logins = append(logins, login)
		addresses = append(addresses, address)
		events = append(events, activity.Event{Actor: address, At: login.At})
	}

	recent := append([]Login(nil), logins...)
	sort.SliceStable(recent, func(firstIndex, secondIndex int) bool {
		return recent[firstIndex].At.After(recent[secondIndex].At)
	})
	if len(recent) > recentLoginsLimit {
		recent = recent[:recentLoginsLimit]
	}
	if recent == nil {
		recent = []Login{}
	}

	topIPs := frequency.Rank(addresses, topAuditIPsLimit)
	return IPAuditResult{
		Total:        len(logins),
		UniqueIPs:    topIPs.Distinct,
		TopIPs:       topIPs,
		LoginsByHour: activity.HourlyCounts(events, parser.location),
		RecentLogins: recent,
	}, nil
}
