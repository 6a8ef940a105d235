package categorize

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	errMessageUnnamedCategory = "category name is empty"
	errMessageDuplicate       = "duplicate category name"
	duplicateCategoryFormat   = "%w: %q"
	decodeTablesErrorFormat   = "decode category tables: %w"
	openTablesErrorFormat     = "open category tables %s: %w"
	invalidTableErrorFormat   = "%s table: %w"
	tableNameInstagram        = "instagram"
	tableNameTwitter          = "twitter"
)

var (
	// ErrUnnamedCategory reports a category table entry without a name.
	ErrUnnamedCategory   = errors.New(errMessageUnnamedCategory)
	// ErrDuplicateCategory reports a category name used twice in one table, counting the fallback.
	ErrDuplicateCategory = errors.New(errMessageDuplicate)

	//go:embed tables/instagram_topics.yaml
	instagramTopicsYAML []byte
	//go:embed tables/twitter_interests.yaml
	twitterInterestsYAML []byte
)

// Table is an ordered rule list together with its fallback bucket name.
type Table struct {
	Fallback string
	Rules    []Rule
}

// Categorize applies the table to labels.
func (table Table) Categorize(labels []string) Result {
	return Categorize(labels, table.Rules, table.Fallback)
}

// Tables bundles the rule tables used by the two export parsers.
type Tables struct {
	Instagram Table
	Twitter   Table
}

type categoryDocument struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type tableDocument struct {
	Fallback   string             `yaml:"fallback"`
	Categories []categoryDocument `yaml:"categories"`
}

type tablesDocument struct {
	Instagram *tableDocument `yaml:"instagram"`
	Twitter   *tableDocument `yaml:"twitter"`
}

// InstagramTopics returns the built-in table for Instagram recommended topics.
func InstagramTopics() Table {
	return mustParseTable(instagramTopicsYAML)
}

// TwitterInterests returns the built-in table for Twitter/X personalization interests.
func TwitterInterests() Table {
	return mustParseTable(twitterInterestsYAML)
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{Instagram: InstagramTopics(), Twitter: TwitterInterests()}
}

// LoadRules decodes a YAML document with optional "instagram" and "twitter" sections. A missing
// section keeps the built-in table.
func LoadRules(reader io.Reader) (Tables, error) {
	var document tablesDocument
	if err := yaml.NewDecoder(reader).Decode(&document); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, fmt.Errorf(decodeTablesErrorFormat, err)
	}

	tables := DefaultTables()
	if document.Instagram != nil {
		table, err := document.Instagram.table()
		if err != nil {
			return Tables{}, fmt.Errorf(invalidTableErrorFormat, tableNameInstagram, err)
		}
		tables.Instagram = table
	}
	if document.Twitter != nil {
		table, err := document.Twitter.table()
		if err != nil {
			return Tables{}, fmt.Errorf(invalidTableErrorFormat, tableNameTwitter, err)
		}
		tables.Twitter = table
	}
	return tables, nil
}

// LoadRulesFile reads LoadRules input from a file path.
func LoadRulesFile(filePath string) (Tables, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Tables{}, fmt.Errorf(openTablesErrorFormat, filePath, err)
	}
	defer file.Close()
	return LoadRules(file)
}

func (document tableDocument) table() (Table, error) {
	table := Table{Fallback: strings.TrimSpace(document.Fallback)}
	if table.Fallback == "" {
		table.Fallback = DefaultFallback
	}
	seenNames := map[string]struct{}{table.Fallback: {}}
	for _, category := range document.Categories {
		name := strings.TrimSpace(category.Name)
		if name == "" {
			return Table{}, ErrUnnamedCategory
		}
		if _, seen := seenNames[name]; seen {
			return Table{}, fmt.Errorf(duplicateCategoryFormat, ErrDuplicateCategory, name)
		}
		seenNames[name] = struct{}{}
		table.Rules = append(table.Rules, KeywordRule(name, category.Keywords...))
	}
	return table, nil
}

func mustParseTable(content []byte) Table {
	var document tableDocument
	if err := yaml.Unmarshal(content, &document); err != nil {
		panic(fmt.Errorf(decodeTablesErrorFormat, err))
	}
	table, err := document.table()
	if err != nil {
		panic(err)
	}
	return table
}
