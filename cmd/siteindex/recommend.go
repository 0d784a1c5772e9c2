package main

import (
	"encoding/json"
	"fmt"

	"github.com/apotheon-labs/siteindex"
)

// Run executes the recommend command.
func (c *RecommendCmd) Run(deps *Dependencies) error {
	recommender := &siteindex.Recommender{
		Search: deps.Search,
		Meta:   deps.Meta,
	}

	recommendations, err := recommender.Recommend(deps.Ctx, c.Goals, siteindex.RecommendOptions{
		Audience:    c.Audience,
		Constraints: c.Constraints,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteindex.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recommendations)
}
