package command

import (
	"strings"

	"github.com/nhle/todokeeper/internal/apperr"
	"github.com/nhle/todokeeper/internal/query"
)

// Name identifies a palette command.
type Name string

const (
	NewItem    Name = "new"
	Categories Name = "categories"
	Sort       Name = "sort"
	Filter     Name = "filter"
	Category   Name = "category"
	Tag        Name = "tag"
	Clear      Name = "clear"
	Quit       Name = "quit"
)

// Command is a parsed palette line.
type Command struct {
	Name Name
	// Arg is the normalised argument: a query.SortKey for sort, a
	// query.Completion for filter, a category name (or "none") or a tag.
	Arg string
}

var aliases = map[string]Name{
	"n":    NewItem,
	"cats": Categories,
	"q":    Quit,
	"exit": Quit,
}

// Parse turns a palette line into a Command. Unknown commands and missing
// or invalid arguments are INVALID_INPUT errors.
func Parse(line string) (Command, error) {
	word, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	word = strings.ToLower(word)
	arg = strings.TrimSpace(arg)

	name := Name(word)
	if a, ok := aliases[word]; ok {
		name = a
	}

	switch name {
	case NewItem, Categories, Clear, Quit:
		return Command{Name: name}, nil

	case Sort:
		if arg == "" {
			return Command{}, apperr.New(apperr.ErrInvalid, "usage: sort <createdAt|priority|dueDate|title>")
		}
		k, err := query.ParseSortKey(arg)
		if err != nil {
			return Command{}, apperr.Wrap(apperr.ErrInvalid, "sort", err)
		}
		return Command{Name: Sort, Arg: string(k)}, nil

	case Filter:
		if arg == "" {
			return Command{}, apperr.New(apperr.ErrInvalid, "usage: filter <all|completed|pending>")
		}
		c, err := query.ParseCompletion(arg)
		if err != nil {
			return Command{}, apperr.Wrap(apperr.ErrInvalid, "filter", err)
		}
		return Command{Name: Filter, Arg: string(c)}, nil

	case Category:
		if arg == "" {
			return Command{}, apperr.New(apperr.ErrInvalid, "usage: category <name>|none")
		}
		if strings.EqualFold(arg, "none") {
			arg = "none"
		}
		return Command{Name: Category, Arg: arg}, nil

	case Tag:
		arg = strings.TrimPrefix(arg, "#")
		if arg == "" {
			return Command{}, apperr.New(apperr.ErrInvalid, "usage: tag <name>")
		}
		return Command{Name: Tag, Arg: arg}, nil

	case "":
		return Command{}, apperr.New(apperr.ErrInvalid, "empty command")
	}

	return Command{}, apperr.Newf(apperr.ErrInvalid, "unknown command %q", word)
}
