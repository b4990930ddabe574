package models

import (
	"github.com/sashabaranov/go-openai"
)

const (
	RouteChat   = "chat"
	RoutePrompt = "prompt"

	// NoResponseReply is returned when the upstream answers without content.
	NoResponseReply = "No response from AI"

	relayTemperature float32 = 0.7
)

// MetaPromptSuffix is appended to the user's message on the prompt route. It
// turns the message into an engineered prompt instead of answering it.
const MetaPromptSuffix = " Take the user's input sentence and transform it into a engineered prompt for an AI chatbot." +
	" The final output should be a prompt, not an answer." +
	" Make sure the prompt includes the following:" +
	" Start by assigning the AI a relevant expert role." +
	" Then, restate the problem that the user is having." +
	" Next, create an outline for the AI to follow when generating a response," +
	" such as an acknowledgment of the student’s feelings, three evidence-based strategies relating to their situation," +
	" a recommended technique relating to their situation, and a reminder on when to seek additional support." +
	" Next, create a specific length length and tone based on the users problem." +
	" Do not generate an answer to the student’s question, just output the restructured prompt."

// Profile fixes everything about an upstream call except the user's message.
type Profile struct {
	Route       string
	Model       string
	Temperature float32
	Suffix      string
}

// Content builds the sole user turn sent upstream.
func (p Profile) Content(message string) string {
	return message + p.Suffix
}

var (
	ChatProfile = Profile{
		Route:       RouteChat,
		Model:       openai.GPT4o,
		Temperature: relayTemperature,
	}

	PromptProfile = Profile{
		Route:       RoutePrompt,
		Model:       openai.GPT4oMini,
		Temperature: relayTemperature,
		Suffix:      MetaPromptSuffix,
	}
)

// ProfileFor looks up a profile by route name.
func ProfileFor(route string) (Profile, bool) {
	switch route {
	case RouteChat:
		return ChatProfile, true
	case RoutePrompt:
		return PromptProfile, true
	default:
		return Profile{}, false
	}
}
