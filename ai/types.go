package ai

// SentimentLabels lists the labels a sentiment classifier may return, in the
// order of core.SentimentLabel.
var SentimentLabels = []string{
	"negative",
	"neutral",
	"positive",
}
