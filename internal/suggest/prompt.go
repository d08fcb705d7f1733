package suggest

import (
	"fmt"
	"strings"

	"github.com/v0xg/seoaudit/internal/issues"
)

const batchSystemPrompt = `You are a senior technical SEO consultant writing remediation notes for a website audit of a residential rental property.

You will receive a numbered list of audit findings of one kind. For every numbered item, produce the requested value. Keep each value to one short, concrete sentence or the literal copy requested. Never invent URLs that are not implied by the item.

Respond ONLY with the JSON array, no explanation or markdown.`

const batchUserPrompt = `%s

Items:
%s
Return a JSON array with exactly one object per item, using the item number as "index":
[{"index": 1, "%s": "..."}, {"index": 2, "%s": "..."}]`

const copywriterSystemPrompt = `You are an expert Real Estate SEO Copywriter. Your tone is luxury, welcoming, and professional.`

const metadataUserPrompt = `Please write a new Title Tag (max 60 chars) and Meta Description (max 160 chars) for the following page.

Page URL: %s
Current Title: %s
Target Keywords: %s

Ensure the copy mentions the location if possible based on the keywords or URL.

Return the result in the following JSON format only:
{"title": "Your generated title", "meta_description": "Your generated meta description"}`

const onPageUserPrompt = `Rewrite the following H1 and Introductory Paragraph to better target the keyword: %q.

Page URL: %s
Current H1: %s
Current Intro: %s

Keep HTML formatting tags if present in the original text.

Return the result in the following JSON format only:
{"h1": "New H1", "content": "New Intro Paragraph"}`

func buildBatchPrompt(category issues.Category, batch []issues.Record) string {
	descriptor := category.Descriptor()

	var items strings.Builder
	for i, record := range batch {
		fmt.Fprintf(&items, "%d. %s\n", i+1, record.Listing())
	}

	return fmt.Sprintf(batchUserPrompt, descriptor.Task, items.String(), descriptor.ResponseField, descriptor.ResponseField)
}

func withPolicy(policyInstruction, system string) string {
	if policyInstruction == "" {
		return system
	}
	return policyInstruction + "\n\n" + system
}
