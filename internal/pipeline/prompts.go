package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/podcast-studio/internal/types"
	"github.com/jonathan/podcast-studio/internal/voices"
)

// transcriptionInstruction asks for a verbatim transcript of the user's
// spoken idea, nothing more.
const transcriptionInstruction = "Transcribe the spoken audio accurately. " +
	"Output only the plain text transcript without speaker labels. " +
	"Do not invent content beyond what is clearly heard."

// improvementInstruction turns the raw user idea into a model-ready prompt
// for the dialogue generator. The length sentence enforces the transcript
// budget at the source; truncation is still applied downstream.
var improvementInstruction = fmt.Sprintf(`Your task:
You are a prompt generator that takes a user idea (either spoken or written) and converts it into a detailed, high-quality prompt
to be used for a text-to-speech dialogue model.
Analyze the user's input and extract the following information:
- Characters: Who are the speakers? What are their personalities?
- Scenario / Topic: What is the conversation about?
- Tone / Style: What is the mood (e.g., casual, professional, educational)?
- Language mix: Are multiple languages or specific accents mentioned?
- Special rules: Are there any other instructions like correcting mistakes?
Use the extracted data to build the final prompt. If any field is missing, use generic but sensible assumptions.
Your output should:
- Describe the roles, personalities, and speaking styles of each character.
- Clearly explain the scenario and context of the conversation.
- Specify the tone and style.
- Include clear instructions for language usage.
- Describe how to handle corrections, vocabulary explanations, and mistakes (if applicable).
- Provide clear output formatting instructions (e.g., "Only output dialogue, labeled with character names").
- Avoid adding any extra narration, sound effects, or non-dialogue text.
- Require the dialogue to be short enough to speak in about 90 seconds (at most %d words).
Output ONLY the improved prompt itself, not any commentary or explanation.
Be explicit, professional, and detailed to ensure the TTS model fully understands the task.`, MaxTranscriptWords)

// Fallback raw inputs when transcription cannot produce usable text.
const (
	emptyTranscriptFallback  = "(Audio transcript empty)"
	failedTranscriptFallback = "(Audio transcription failed; proceed with generic prompt)"
)

// speakerInstructions derives the deterministic formatting contract for the
// dialogue. The "Speaker 1:" / "Speaker 2:" labels are load-bearing: the
// audio stage keys its voice assignment off them.
func speakerInstructions(speakerCount int, genders []string) string {
	genderAt := func(i int) string {
		if i < len(genders) {
			return voices.GenderWord(genders[i])
		}
		return "unspecified"
	}

	if speakerCount <= 1 {
		return fmt.Sprintf(
			"There is exactly one speaker. It is a %s host speaking alone. "+
				"Write the output as a monologue (no other voices).", genderAt(0))
	}
	return fmt.Sprintf(
		"There are exactly two speakers. Speaker 1 is %s. Speaker 2 is %s. "+
			"Alternate their dialogue naturally. Label each line with 'Speaker 1:' or 'Speaker 2:' only. "+
			"Do not invent extra characters.", genderAt(0), genderAt(1))
}

// localisationInstruction grounds a localisation episode in its theme and
// location.
func localisationInstruction(theme, geoLocation string) string {
	return fmt.Sprintf(
		"This episode is a local guide segment. Ground the conversation in %s, "+
			"focusing on its %s. Refer to real places, names and specifics of the area "+
			"rather than generic travel talk.", geoLocation, theme)
}

// localisationSeed synthesizes a raw input for localisation jobs submitted
// without any user text.
func localisationSeed(theme, geoLocation string) string {
	return fmt.Sprintf(
		"A short podcast where a knowledgeable local host introduces the %s of %s to first-time visitors.",
		theme, geoLocation)
}

// languageInstruction enforces the target output language.
func languageInstruction(language string) string {
	return fmt.Sprintf("The entire dialogue must be written in %s, with no other language mixed in.", language)
}

// titlePromptMaxTranscript caps how much transcript the title prompt carries.
const titlePromptMaxTranscript = 6000

// titlePrompt builds the title-synthesis prompt. Localisation titles lean on
// theme and location rather than transcript content alone.
func titlePrompt(category types.Category, theme, geoLocation, transcript string) string {
	if len(transcript) > titlePromptMaxTranscript {
		transcript = transcript[:titlePromptMaxTranscript]
	}
	if category == types.CategoryLocalisation {
		return fmt.Sprintf(
			"Generate a concise, compelling episode title (max 8 words) for a local guide segment "+
				"about the %s of %s. No quotes, no extra punctuation. Transcript:\n%s",
			theme, geoLocation, transcript)
	}
	return "Generate a concise, compelling podcast episode title (max 8 words) based ONLY on this transcript." +
		" No quotes, no extra punctuation. Transcript:\n" + transcript
}

// cleanTitle strips surrounding whitespace and flattens newlines.
func cleanTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), "\n", " ")
}
