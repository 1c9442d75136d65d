package llm

import (
	"fmt"
	"strings"

	"cardgenius/internal/core"
)

// systemPreamble frames every chat completion. Card facts are appended
// verbatim below it: the model answers from the concatenated context
// rather than a retrieval index.
const systemPreamble = `You are CardGenius, an assistant for an Indian credit-card comparison site.
Answer only from the card facts provided below. If the facts do not cover
the question, say so instead of guessing. Amounts are in INR.`

// CardContext serializes card facts into the prompt context block.
func CardContext(cards ...core.Card) string {
	var b strings.Builder
	for _, card := range cards {
		fmt.Fprintf(&b, "## %s (%s, %s network)\n", card.Name, card.BankName, card.Network)
		fmt.Fprintf(&b, "Joining fee: ₹%.0f, annual fee: ₹%.0f, rating: %.1f/5\n", card.JoiningFee, card.AnnualFee, card.Rating)
		if len(card.KeyFeatures) > 0 {
			b.WriteString("Key features:\n")
			for _, f := range card.KeyFeatures {
				b.WriteString("- " + f + "\n")
			}
		}
		if len(card.Benefits) > 0 {
			b.WriteString("Benefits:\n")
			for _, f := range card.Benefits {
				b.WriteString("- " + f + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SystemPrompt builds the full system message for a chat turn.
func SystemPrompt(cards ...core.Card) string {
	ctx := CardContext(cards...)
	if ctx == "" {
		return systemPreamble
	}
	return systemPreamble + "\n\n# Card facts\n\n" + ctx
}

// composeInstruction asks for a single platform-ready post body.
func composeInstruction(card core.Card, platform core.Platform) string {
	limits := map[core.Platform]string{
		core.PlatformTwitter:   "under 280 characters, one or two hashtags",
		core.PlatformLinkedIn:  "2-3 short paragraphs, professional tone",
		core.PlatformInstagram: "short caption with 3-5 hashtags",
	}
	return fmt.Sprintf(
		"Write one social post about the %s credit card for %s (%s). Return only the post text, no preamble.",
		card.Name, platform, limits[platform])
}
