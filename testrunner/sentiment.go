package testrunner

import "strings"

// positiveWords and negativeWords are a small, deliberately unweighted
// keyword list. spec.md §4.9 calls for "a trivial keyword-based
// sentiment classifier" rather than a real model, so ties and edge
// cases resolve to "neutral" instead of guessing.
var positiveWords = []string{
	"great", "good", "excellent", "happy", "love", "wonderful", "amazing",
	"fantastic", "pleased", "glad", "perfect", "thank", "thanks", "awesome",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "angry", "sad", "sorry", "worst",
	"poor", "disappointed", "horrible", "wrong", "fail", "failed",
}

// Sentiment classifies text as "positive", "negative", or "neutral" by
// counting keyword hits; a strict majority in either direction wins,
// otherwise the text is neutral.
func Sentiment(text string) string {
	lower := strings.ToLower(text)
	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}

func countHits(lower string, words []string) int {
	count := 0
	for _, w := range words {
		count += strings.Count(lower, w)
	}
	return count
}
