package frontmatter

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---\n"

// Render serializes fm as a delimited YAML block. Keys are emitted in a fixed
// order: title, slug, date, the category list under categoryKey, draft,
// contributor, wikilinks, aliases and images. Empty optional keys are omitted.
func Render(fm *FrontMatter, categoryKey string) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, val *yaml.Node) {
		root.Content = append(root.Content, strNode(key), val)
	}

	add("title", quoted(fm.Title))
	add("slug", quoted(fm.Slug.String()))
	add("date", &yaml.Node{Kind: yaml.ScalarNode, Value: fm.Date.Format(time.RFC3339)})
	add(categoryKey, flowSeq(sortedUnique(fm.Categories)))
	add("draft", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"})
	if fm.Contributor != "" {
		add("contributor", strNode(fm.Contributor))
	}
	add("wikilinks", flowSeq(fm.WikilinkDestinations()))
	if len(fm.Aliases) > 0 {
		add("aliases", flowSeq(sortedUnique(fm.Aliases)))
	}
	if len(fm.ImagePaths) > 0 {
		images := &yaml.Node{Kind: yaml.SequenceNode}
		for _, p := range fm.ImagePaths {
			images.Content = append(images.Content, &yaml.Node{
				Kind:    yaml.MappingNode,
				Content: []*yaml.Node{strNode("path"), quoted(p)},
			})
		}
		add("images", images)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("frontmatter: encode %q: %w", fm.Title, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode %q: %w", fm.Title, err)
	}
	buf.WriteString(delimiter)
	return buf.Bytes(), nil
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func quoted(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
}

func flowSeq(items []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, item := range items {
		seq.Content = append(seq.Content, strNode(item))
	}
	return seq
}
