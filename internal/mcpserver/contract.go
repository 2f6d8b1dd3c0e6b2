package mcpserver

// OutputFormatContract describes the Hugo pages the converter produces, for
// LLM consumers that read them through read_page.
const OutputFormatContract = `# wikihugo Output Format

Every converted page is a Markdown file with a YAML front matter block,
stored under the same relative path as its source page.

## Structure

` + "```" + `markdown
---
title: "Regulacja gryfu"              # page title, from the file name
slug: "regulacja-gryfu"               # ASCII slug of the title
date: 2008-05-01T12:00:00Z            # first revision, or 2005-01-01T00:00:00+01:00
kategorie: [Technika gry]             # categories; the key is configurable
draft: false
contributor: Zenek                    # only with a MediaWiki XML export
wikilinks: [Gryf, Struny]             # every wikilink destination on the page
aliases: [/Gitara/stary-tytul]        # URL paths of pages redirecting here
images:                               # only when the page shows images
  - path: "gryf.jpg"
---

Body text in Markdown.
` + "```" + `

## Links

1. A wikilink that names an existing page becomes
   ` + "`" + `[anchor]({{< relref "Page_Name.md" >}})` + "`" + `.
2. A wikilink to a redirect page points at the page at the end of the
   redirect chain. Redirect pages themselves produce no output.
3. A wikilink to a category becomes a link to the category archive:
   ` + "`" + `[anchor](/kategorie/technika-gry "Kategoria Technika gry")` + "`" + `.
4. A wikilink that resolves to nothing keeps its anchor text and is followed by
   ` + "`" + `<!-- link did not resolve to anything: reason -->` + "`" + `.
5. Category links are removed from the body; the categories live in the
   front matter only.
6. Images become ` + "`" + `{{< figure src="name.jpg" >}}` + "`" + ` (the shortcode is configurable).
7. Runs of lines wrapped in single backticks become one fenced code block.

## Statuses

- **written**: the output changed and was written by the last run.
- **unchanged**: the output already matched and was left alone.
- **redirect**: the page only redirects and has no output.
`
