package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apotheon-labs/siteindex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	filter, err := parseFilter(c.Filter)
	if err != nil {
		return err
	}

	results, err := deps.Search.Search(deps.Ctx, strings.Join(c.Query, " "), c.Limit, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteindex.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// parseFilter converts repeated key=value flags to a metadata filter map.
func parseFilter(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}
