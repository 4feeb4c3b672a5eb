package helper

import (
	"math/rand"
	"strings"

	"gowa-blast/internal/model"
)

// RenderMessage prepares one outgoing text for one contact: contact
// placeholders first, then spintax, so alternatives may contain
// placeholders of their own.
func RenderMessage(text string, c model.Contact) string {
	result := strings.ReplaceAll(text, "{NAME}", c.Name)
	return RenderSpintax(result)
}

// RenderSpintax resolves {a|b|c} alternatives by picking one option at
// random. Groups do not nest; the first closing brace wins. Blasting
// the exact same bytes to a whole contact list is an easy detection
// signal, so scripts usually carry a few alternatives per sentence.
func RenderSpintax(text string) string {
	result := text
	for {
		start := strings.Index(result, "{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}")
		if end == -1 {
			break
		}
		end += start

		options := strings.Split(result[start+1:end], "|")
		chosen := options[rand.Intn(len(options))]

		result = result[:start] + chosen + result[end+1:]
	}
	return result
}
