package main

import (
	"fmt"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	article, err := deps.Pipeline.Preview(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kindlebeam.ErrorMessage(err))
		return err
	}

	content := article.Content
	if c.Markdown {
		content, err = deps.Converter.Convert(article.Content)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", kindlebeam.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "# %s\n\n%s\n", article.DisplayTitle(), content)
	return nil
}
