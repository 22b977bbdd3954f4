package usecase

import (
	"fmt"
	"strings"

	"ContentForge/internal/domain"
)

const digestSystemInstruction = "You write daily news digests. The content field must contain only the " +
	"article body in markdown. Never include key takeaways, tag lists, or any other metadata section " +
	"inside the content field; those belong exclusively in their own response fields."

// articlePrompt composes the research-and-write instruction for a single
// title-driven run.
func articlePrompt(title, brief string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research and write a 1000-1500 word article titled %q.\n\n", title)
	fmt.Fprintf(&b, "Research brief: %s\n\n", brief)
	b.WriteString("Return a JSON object with these fields:\n")
	b.WriteString("- summary: a 2-3 sentence overview\n")
	b.WriteString("- content: the full article in markdown\n")
	b.WriteString("- keyTakeaways: 3-5 short bullet points\n")
	b.WriteString("- tags: exactly 5 lowercase tags\n")
	return b.String()
}

// digestPrompt composes the daily-digest instruction from pre-aggregated feed
// items, grouped by category in first-seen order.
func digestPrompt(items []domain.FeedItem) string {
	order := make([]string, 0, 4)
	groups := map[string][]domain.FeedItem{}
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "general"
		}
		if _, seen := groups[category]; !seen {
			order = append(order, category)
		}
		groups[category] = append(groups[category], item)
	}

	var b strings.Builder
	b.WriteString("Write a single daily digest article synthesizing the news items below from the last 24 hours.\n")
	b.WriteString("Group related developments, explain why they matter to an international audience, and link items by their source names.\n\n")

	for _, category := range order {
		fmt.Fprintf(&b, "## %s\n", category)
		for _, item := range groups[category] {
			fmt.Fprintf(&b, "- %s (%s)", item.Title, item.Source)
			if item.Description != "" {
				fmt.Fprintf(&b, ": %s", item.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Return a JSON object with fields title, summary, content (markdown), keyTakeaways (3-5), tags (5), and categories (the category names you covered).\n")
	return b.String()
}
