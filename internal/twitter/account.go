package twitter

import (
	"sort"
	"strings"
	"time"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/relationships"
	"github.com/f-sync/socialstats/internal/textfix"
)

const (
	accountDateLayout  = time.RFC3339
	unknownGender      = "unknown"
	hoursPerDay        = 24
	keyAccount         = "account"
	keyPersonalization = "p13nData"
)

// AccountAge is the calendar distance between account creation and the analysis time.
type AccountAge struct {
	Years     int `json:"years"`
	Months    int `json:"months"`
	Days      int `json:"days"`
	TotalDays int `json:"totalDays"`
}

// AccountResult describes the archive owner.
type AccountResult struct {
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName"`
	AccountID   string      `json:"accountId"`
	CreatedAt   time.Time   `json:"createdAt,omitzero"`
	Age         *AccountAge `json:"age,omitempty"`
}

// IdentityListResult lists blocked or muted accounts.
type IdentityListResult struct {
	Total    int                      `json:"total"`
	Accounts []relationships.Identity `json:"accounts"`
}

// ScreenNameChange is one username change.
type ScreenNameChange struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at,omitzero"`
}

// ScreenNameChangesResult is the username history, oldest first.
type ScreenNameChangesResult struct {
	Total   int                `json:"total"`
	History []ScreenNameChange `json:"history"`
}

// Demographics is what the platform inferred about the owner.
type Demographics struct {
	Languages []string `json:"languages"`
	Gender    string   `json:"gender"`
}

// InterestsResult holds the enabled personalization interests and their categories.
type InterestsResult struct {
	Total        int               `json:"total"`
	Interests    []string          `json:"interests"`
	Categories   categorize.Result `json:"categories"`
	Demographics Demographics      `json:"demographics"`
}

func identityFromLink(link accountLinkDocument) relationships.Identity {
	return relationships.Identity{Key: strings.TrimSpace(link.AccountID), Link: link.UserLink}
}

func (parser *Parser) buildAccount(items []accountItem) (AccountResult, error) {
	if len(items) == 0 || items[0].Account == nil {
		return AccountResult{}, archive.MissingKey(keyAccount)
	}
	document := items[0].Account
	account := AccountResult{
		Username:    document.Username,
		DisplayName: textfix.Repair(document.AccountDisplayName),
		AccountID:   document.AccountID,
		CreatedAt:   parseTime(accountDateLayout, document.CreatedAt),
	}
	if !account.CreatedAt.IsZero() {
		age := CalculateAge(account.CreatedAt, parser.now(), parser.location)
		account.Age = &age
	}
	return account, nil
}

// CalculateAge returns the whole calendar years and months between created and now in loc, the
// remaining whole days, and the total number of whole days elapsed.
func CalculateAge(created time.Time, now time.Time, loc *time.Location) AccountAge {
	if loc == nil {
		loc = time.Local
	}
	created = created.In(loc)
	now = now.In(loc)
	if now.Before(created) {
		return AccountAge{}
	}

	years := now.Year() - created.Year()
	if created.AddDate(years, 0, 0).After(now) {
		years--
	}
	months := 0
	for !created.AddDate(years, months+1, 0).After(now) {
		months++
	}
	days := int(now.Sub(created.AddDate(years, months, 0)).Hours() / hoursPerDay)
	return AccountAge{
		Years:     years,
		Months:    months,
		Days:      days,
		TotalDays: int(now.Sub(created).Hours() / hoursPerDay),
	}
}

func buildBlocks(items []blockItem) (IdentityListResult, error) {
	accounts := make([]relationships.Identity, 0, len(items))
	for _, item := range items {
		accounts = append(accounts, identityFromLink(item.Blocking))
	}
	return IdentityListResult{Total: len(accounts), Accounts: accounts}, nil
}

// buildMutes skips entries without an account id.
func buildMutes(items []muteItem) (IdentityListResult, error) {
	accounts := []relationships.Identity{}
	for _, item := range items {
		identity := identityFromLink(item.Muting)
		if identity.Key == "" {
			continue
		}
		accounts = append(accounts, identity)
	}
	return IdentityListResult{Total: len(accounts), Accounts: accounts}, nil
}

func buildScreenNameChanges(items []screenNameChangeItem) (ScreenNameChangesResult, error) {
	history := []ScreenNameChange{}
	for _, item := range items {
		change := item.ScreenNameChange.ScreenNameChange
		if change.ChangedFrom == "" || change.ChangedTo == "" {
			continue
		}
		history = append(history, ScreenNameChange{
			From: change.ChangedFrom,
			To:   change.ChangedTo,
			At:   parseTime(accountDateLayout, change.ChangedAt),
		})
	}
	sort.SliceStable(history, func(firstIndex, secondIndex int) bool {
		return history[firstIndex].At.Before(history[secondIndex].At)
	})
	return ScreenNameChangesResult{Total: len(history), History: history}, nil
}

func (parser *Parser) buildInterests(items []personalizationItem) (InterestsResult, error) {
	if len(items) == 0 || items[0].P13nData == nil {
		return InterestsResult{}, archive.MissingKey(keyPersonalization)
	}
	document := items[0].P13nData

	interests := []string{}
	for _, interest := range document.Interests.Interests {
		name := textfix.Repair(strings.TrimSpace(interest.Name))
		if interest.IsDisabled || name == "" {
			continue
		}
		interests = append(interests, name)
	}
	languages := []string{}
	for _, language := range document.Demographics.Languages {
		if language.Language != "" {
			languages = append(languages, language.Language)
		}
	}
	gender := document.Demographics.GenderInfo.Gender
	if gender == "" {
		gender = unknownGender
	}

	return InterestsResult{
		Total:        len(interests),
		Interests:    interests,
		Categories:   parser.interests.Categorize(interests),
		Demographics: Demographics{Languages: languages, Gender: gender},
	}, nil
}
