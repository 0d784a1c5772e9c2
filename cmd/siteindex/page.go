package main

import (
	"encoding/json"
	"fmt"

	"github.com/apotheon-labs/siteindex"
)

// Run executes the page command.
func (c *PageCmd) Run(deps *Dependencies) error {
	doc, err := deps.Meta.PageBySlug(c.Slug)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteindex.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
