// Package categorize assigns free-text labels to exactly one category using ordered keyword rules.
package categorize

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultFallback names the bucket of labels no rule matches.
const DefaultFallback = "Diğer"

// Rule is one category and the predicate deciding membership. Match receives the lowercased label.
type Rule struct {
	Name     string
	Keywords []string
	Match    func(lower string) bool
}

// KeywordRule builds a rule matching labels that contain any of the keywords.
func KeywordRule(name string, keywords ...string) Rule {
	lowered := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		lowered = append(lowered, strings.ToLower(keyword))
	}
	return Rule{
		Name:     name,
		Keywords: lowered,
		Match: func(lower string) bool {
			for _, keyword := range lowered {
				if keyword != "" && strings.Contains(lower, keyword) {
					return true
				}
			}
			return false
		},
	}
}

// Category lists the labels assigned to one category name.
type Category struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

// Result holds the non-empty categories in rule order, followed by the fallback bucket.
type Result []Category

// Lookup returns the labels assigned to the named category.
func (result Result) Lookup(name string) ([]string, bool) {
	for _, category := range result {
		if category.Name == name {
			return category.Labels, true
		}
	}
	return nil, false
}

// Names returns the category names in order.
func (result Result) Names() []string {
	names := make([]string, 0, len(result))
	for _, category := range result {
		names = append(names, category.Name)
	}
	return names
}

// MarshalJSON encodes the result as an object whose keys keep the category order.
func (result Result) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, category := range result {
		if index > 0 {
			buffer.WriteByte(',')
		}
		nameJSON, err := json.Marshal(category.Name)
		if err != nil {
			return nil, err
		}
		labelsJSON, err := json.Marshal(category.Labels)
		if err != nil {
			return nil, err
		}
		buffer.Write(nameJSON)
		buffer.WriteByte(':')
		buffer.Write(labelsJSON)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// Categorize tests every lowercased label against rules in order and files it under the first
// match, or under fallback when nothing matches. Categories without labels are omitted.
func Categorize(labels []string, rules []Rule, fallback string) Result {
	if fallback == "" {
		fallback = DefaultFallback
	}
	buckets := make([][]string, len(rules))
	var unmatched []string

	for _, label := range labels {
		lower := strings.ToLower(label)
		matched := false
		for ruleIndex, rule := range rules {
			if rule.Match != nil && rule.Match(lower) {
				buckets[ruleIndex] = append(buckets[ruleIndex], label)
				matched = true
				break
			}
		}
		if !matched {
			unmatched = append(unmatched, label)
		}
	}

	result := Result{}
	for ruleIndex, rule := range rules {
		if len(buckets[ruleIndex]) > 0 {
			result = append(result, Category{Name: rule.Name, Labels: buckets[ruleIndex]})
		}
	}
	if len(unmatched) > 0 {
		result = append(result, Category{Name: fallback, Labels: unmatched})
	}
	return result
}
