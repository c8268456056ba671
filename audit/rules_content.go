package audit

import (
	"fmt"

	"github.com/seo-optimizer/seoaudit/page"
)

const (
	minWordCount   = 300
	wordsPerMinute = 200
)

var contentRules = []Rule{
	{
		ID:          "word-count",
		Category:    CategoryContent,
		Name:        "Word Count",
		Description: "Page should have sufficient content.",
		Check:       checkWordCount,
	},
	{
		ID:          "reading-time",
		Category:    CategoryContent,
		Name:        "Reading Time",
		Description: "Estimated reading time based on word count.",
		Check:       checkReadingTime,
	},
}

func checkWordCount(p page.Extraction) Verdict {
	wc := p.WordCount
	switch {
	case wc >= minWordCount:
		return pass(fmt.Sprintf("%d words found (sufficient content).", wc))
	case wc > 0:
		return warning(fmt.Sprintf("Only %d words found. Pages with < 300 words may be considered thin content.", wc))
	}
	return info("No text content found on page.")
}

// ReadingMinutes is ceil(words / 200).
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

func checkReadingTime(p page.Extraction) Verdict {
	minutes := ReadingMinutes(p.WordCount)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return info(fmt.Sprintf("Estimated reading time: %d %s (%d words).", minutes, unit, p.WordCount))
}
