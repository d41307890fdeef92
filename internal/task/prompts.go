package task

import (
	"fmt"

	"github.com/fastlesson/fastlesson-api/internal/domain"
)

// modeDescriptions translates an improve mode into the instruction embedded
// in the rewrite prompt. Unknown modes fall back to the raw mode string.
var modeDescriptions = map[domain.ImproveMode]string{
	domain.ImproveModeComplexify:  "make the material more advanced, adding detail and extra examples",
	domain.ImproveModeSimplify:    "simplify the material, making it easier to understand",
	domain.ImproveModeMoreTasks:   "add more tasks and exercises on the topic",
	domain.ImproveModeRemoveTasks: "remove some of the tasks and exercises, keeping only the key ones",
}

// buildOutlinePrompt asks for the section plan of a lesson. The model must
// answer with a JSON object whose 'sections' list carries one topic hint
// per planned section.
func buildOutlinePrompt(lesson *domain.Lesson) string {
	return fmt.Sprintf(
		"Compose the structure of a worksheet on the topic: %s. "+
			"Subject: %s, level: %s. "+
			"Return JSON with a 'sections' key, where each element contains a "+
			"'section_topic' field describing what the section should cover.",
		lesson.Title,
		lesson.SubjectDisplay(),
		lesson.LevelDisplay(),
	)
}

// buildSectionPrompt asks for the full content of one planned section.
func buildSectionPrompt(lesson *domain.Lesson, topicHint string) string {
	prompt := fmt.Sprintf(
		"You are a teaching methodologist. Use Markdown. Generate the complete "+
			"content of one worksheet section and a small task without answers "+
			"for the lesson '%s'. "+
			"Subject: '%s'. "+
			"Section topic: %s. "+
			"Return JSON with fields: title (str), content (str), has_task (true/false). "+
			"Answer with the JSON object only.",
		lesson.Title,
		lesson.SubjectDisplay(),
		topicHint,
	)

	if lesson.Subject == domain.SubjectForeignLanguage {
		prompt += " All example sentences and tasks must be written in the " +
			"language being studied (NOT the learner's native language), while " +
			"explanations stay in the learner's native language unless stated otherwise."
	}

	return prompt
}

// buildImprovePrompt asks for a rewrite of an existing section's content.
func buildImprovePrompt(section *domain.Section, mode domain.ImproveMode) string {
	instruction, ok := modeDescriptions[mode]
	if !ok {
		instruction = string(mode)
	}

	return fmt.Sprintf(
		"You are helping to improve a lesson.\n"+
			"Section topic: %s\n"+
			"Current section content:\n%s\n\n"+
			"The goal is to %s.\n"+
			"Return only JSON with a field {\"improved_content\": str}",
		section.Title,
		section.Content,
		instruction,
	)
}
