package messages

import (
	"math/rand/v2"
	"strings"
)

// SuggestionSeparator разделяет вопросы в строке подсказок.
const SuggestionSeparator = "||"

const suggestionsCount = 3

var suggestionPool = []string{
	"What's a hobby you've recently started?",
	"If you could have dinner with any historical figure, who would it be?",
	"What's a simple thing that makes you happy?",
	"What's your favorite movie of all time?",
	"If you could travel anywhere tomorrow, where would you go?",
	"What's the best piece of advice you've ever received?",
	"What's a skill you'd love to learn?",
	"What song always puts you in a good mood?",
	"What's something you're looking forward to this year?",
	"Which book changed the way you think?",
	"What's your idea of a perfect weekend?",
	"If you could master any instrument, which would you choose?",
}

// Suggest возвращает три разных вопроса-подсказки, разделённых SuggestionSeparator.
func (s *Service) Suggest() string {
	picked := make([]string, 0, suggestionsCount)
	for _, i := range rand.Perm(len(suggestionPool))[:suggestionsCount] {
		picked = append(picked, suggestionPool[i])
	}
	return strings.Join(picked, SuggestionSeparator)
}
