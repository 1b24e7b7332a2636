package server

import (
	"golang.org/x/text/language"
)

// Sample is a canned text offered by the UI.
type Sample struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

const (
	sampleGreetingJA = "こんにちは、私はAIアシスタントです。お手伝いできることがあれば、お気軽にお申し付けください。"
	sampleGreetingEN = "Hello, I am an AI assistant. How can I help you today?"
	sampleLongJA     = "音声合成技術は、テキストを人間の声に変換する技術です。この技術は、スクリーンリーダー、ナビゲーションシステム、バーチャルアシスタントなど、さまざまな用途に使用されています。最近の音声合成技術は非常に自然で、人間の声と区別がつかないほど高品質になっています。"
)

// supportedLanguages lists UI languages; the first entry is the fallback.
var supportedLanguages = []language.Tag{
	language.Japanese,
	language.English,
}

var sampleMatcher = language.NewMatcher(supportedLanguages)

// The texts are the same in every language, only the labels change.
var samplesByLanguage = map[language.Tag][]Sample{
	language.Japanese: {
		{Label: "こんにちは", Text: sampleGreetingJA},
		{Label: "英語サンプル", Text: sampleGreetingEN},
		{Label: "長文サンプル", Text: sampleLongJA},
	},
	language.English: {
		{Label: "Japanese greeting", Text: sampleGreetingJA},
		{Label: "English sample", Text: sampleGreetingEN},
		{Label: "Long sample", Text: sampleLongJA},
	},
}

// SamplesFor picks the sample set best matching an Accept-Language header.
func SamplesFor(acceptLanguage string) (language.Tag, []Sample) {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supportedLanguages[0], samplesByLanguage[supportedLanguages[0]]
	}
	_, index, conf := sampleMatcher.Match(tags...)
	if conf == language.No {
		index = 0
	}
	tag := supportedLanguages[index]
	return tag, samplesByLanguage[tag]
}
