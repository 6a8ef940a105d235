package instagram

import (
	"regexp"
	"strings"
	"time"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/frequency"
)

const (
	fieldIPAddress   = "IP Address"
	fieldIPAddressTR = "IP Adresi"
	fieldUserAgent   = "User Agent"
	fieldUserAgentTR = "Kullanıcı Aracısı"

	deviceAndroid   = "Android"
	deviceIPhone    = "iPhone"
	deviceDesktop   = "Desktop"
	deviceUnknown   = "Unknown"
	platformApp     = "Instagram App"
	platformFirefox = "Firefox"
	platformEdge    = "Edge"
	platformChrome  = "Chrome"
	platformSafari  = "Safari"
	platformUnknown = "Unknown"

	userAgentInstagram = "Instagram"
	userAgentAndroid   = "Android"
	userAgentIPhone    = "iPhone"
	userAgentIOS       = "iOS"
	userAgentFirefox   = "Firefox"
	userAgentEdge      = "Edg/"
	userAgentChrome    = "Chrome"
	userAgentSafari    = "Safari"

	androidModelPattern = `; ([^;]+); ([^;]+);`
	topLoginIPsLimit    = 10
)

var reAndroidModel = regexp.MustCompile(androidModelPattern)

// DeviceInfo is the device classification derived from a login user agent.
type DeviceInfo struct {
	Device   string `json:"device"`
	Platform string `json:"platform"`
	Model    string `json:"model,omitempty"`
}

// Login is one entry of the login history.
type Login struct {
	IP        string    `json:"ip"`
	At        time.Time `json:"at,omitzero"`
	UserAgent string    `json:"userAgent,omitempty"`
	DeviceInfo
}

// LoginActivityResult summarizes the login history.
type LoginActivityResult struct {
	Total              int               `json:"total"`
	UniqueIPs          int               `json:"uniqueIps"`
	TopIPs             frequency.Table   `json:"topIps"`
	DeviceDistribution []frequency.Share `json:"deviceDistribution"`
	LoginsByHour       [24]int           `json:"loginsByHour"`
	Logins             []Login           `json:"logins"`
}

// ClassifyUserAgent maps a login user agent to a device and platform.
func ClassifyUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{Device: deviceUnknown, Platform: platformUnknown}
	}
	if strings.Contains(userAgent, userAgentInstagram) {
		if strings.Contains(userAgent, userAgentAndroid) {
			model := deviceAndroid
			if match := reAndroidModel.FindStringSubmatch(userAgent); match != nil {
				model = match[2]
			}
			return DeviceInfo{Device: deviceAndroid, Platform: platformApp, Model: model}
		}
		if strings.Contains(userAgent, userAgentIPhone) || strings.Contains(userAgent, userAgentIOS) {
			return DeviceInfo{Device: deviceIPhone, Platform: platformApp}
		}
	}
	switch {
	case strings.Contains(userAgent, userAgentFirefox):
		return DeviceInfo{Device: deviceDesktop, Platform: platformFirefox}
	case strings.Contains(userAgent, userAgentEdge):
		return DeviceInfo{Device: deviceDesktop, Platform: platformEdge}
	case strings.Contains(userAgent, userAgentChrome):
		return DeviceInfo{Device: deviceDesktop, Platform: platformChrome}
	case strings.Contains(userAgent, userAgentSafari):
		return DeviceInfo{Device: deviceDesktop, Platform: platformSafari}
	}
	return DeviceInfo{Device: deviceUnknown, Platform: platformUnknown}
}

func (parser *Parser) buildLoginActivity(document loginActivityDocument) (LoginActivityResult, error) {
	if document.Items == nil {
		return LoginActivityResult{}, archive.MissingKey(keyLoginHistory)
	}
	logins := []Login{}
	addresses := []string{}
	devices := []string{}
	events := []activity.Event{}
	for _, item := range *document.Items {
		address := strings.TrimSpace(item.lookup(fieldIPAddressTR, fieldIPAddress).Value)
		if address == "" {
			continue
		}
		userAgent := item.lookup(fieldUserAgentTR, fieldUserAgent).Value
		login := Login{
			IP:         address,
			At:         activity.UnixTime(item.lookup(fieldTimeTR, fieldTime).Timestamp),
			UserAgent:  userAgent,
			DeviceInfo: ClassifyUserAgent(userAgent),
		}
		logins = append(logins, login)
		addresses = append(addresses, address)
		devices = append(devices, login.Device)
		events = append(events, activity.Event{Actor: address, At: login.At})
	}

	topIPs := frequency.Rank(addresses, topLoginIPsLimit)
	return LoginActivityResult{
		Total:              len(logins),
		UniqueIPs:          topIPs.Distinct,
		TopIPs:             topIPs,
		DeviceDistribution: frequency.Rank(devices, 0).Distribution(),
		LoginsByHour:       activity.HourlyCounts(events, parser.location),
		Logins:             logins,
	}, nil
}
