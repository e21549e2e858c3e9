package emotion

import "strings"

// Tag enumerates the avatar animation states understood by the frontend.
type Tag string

const (
	Idle        Tag = "idle"
	Talking     Tag = "talking"
	Thinking    Tag = "thinking"
	Angry       Tag = "angry"
	Celebrating Tag = "celebrating"
	Confused    Tag = "confused"
	Excited     Tag = "excited"
)

// Classifier allows swapping the keyword heuristic without touching the
// coordinator or the reply pipeline.
type Classifier interface {
	Classify(text string) Tag
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(text string) Tag

// Classify implements Classifier.
func (f ClassifierFunc) Classify(text string) Tag { return f(text) }

// Keyword buckets checked in priority order; the first bucket containing a
// match wins, so a celebratory reply stays celebrating even when it also
// mentions anger.
var buckets = []struct {
	tag      Tag
	keywords []string
}{
	{Celebrating, []string{
		"开心", "高兴", "庆祝", "太好了", "太棒了", "真棒", "哈哈",
		"celebrate", "congrats", "congratulations", "amazing", "awesome", "fantastic", "great news", "to the moon",
	}},
	{Angry, []string{
		"生气", "愤怒", "气死", "火大", "怒",
		"angry", "furious", "outrage", "frustrating", "unacceptable",
	}},
	{Thinking, []string{
		"思考", "考虑", "想一想", "琢磨",
		"let me think", "thinking about", "pondering", "good question", "interesting question",
	}},
	{Confused, []string{
		"困惑", "不明白", "不确定", "搞不懂",
		"confused", "not sure", "unclear", "don't understand",
	}},
}

// Classify maps reply text to an animation tag. This is best-effort sentiment
// tagging by keyword containment, not guaranteed-correct classification.
func Classify(text string) Tag {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Talking
	}

	for _, bucket := range buckets {
		for _, word := range bucket.keywords {
			if strings.Contains(normalized, word) {
				return bucket.tag
			}
		}
	}

	if strings.Count(text, "!")+strings.Count(text, "！") >= 2 {
		return Excited
	}

	return Talking
}

// Parse maps a wire value to a known tag. Unrecognized values degrade to
// Talking rather than failing; new tags must never break older consumers.
func Parse(raw string) Tag {
	switch tag := Tag(strings.ToLower(strings.TrimSpace(raw))); tag {
	case Idle, Talking, Thinking, Angry, Celebrating, Confused, Excited:
		return tag
	default:
		return Talking
	}
}
