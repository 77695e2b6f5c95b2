package services

import (
	"fmt"
	"strings"

	"promptforge/models"
)

// toolInstructions maps (tool, prompt type) to the instruction fragment
// placed at the head of the system message. Pure data; the enhancement
// pipeline never varies these at runtime.
var toolInstructions = map[models.AITool]map[models.PromptType]string{
	models.AIToolReplit: {
		models.PromptTypeCreate:  "Format this prompt for Replit's AI web app creator. Focus on technical details, architecture, and clear instructions for creating a new application.",
		models.PromptTypeEnhance: "Format this prompt for Replit's AI web app creator. Focus on improving clarity and technical specifications while maintaining the original intent.",
	},
	models.AIToolCursor: {
		models.PromptTypeCreate:  "Format this prompt for Cursor's AI code generation. Emphasize specific implementation details and coding patterns for a new application.",
		models.PromptTypeEnhance: "Format this prompt for Cursor's AI code generation. Focus on clarifying technical requirements and implementation details.",
	},
	models.AIToolV0: {
		models.PromptTypeCreate:  "Format this prompt for v0.dev's UI generation. Include detailed design specifications, components, and layout structure for a new application.",
		models.PromptTypeEnhance: "Format this prompt for v0.dev's UI generation. Focus on clarifying design requirements and component specifications.",
	},
}

// SystemInstruction builds the full system message for a (tool, prompt type)
// pair, appending the common enhancement rubric and the optional free-text
// context block.
func SystemInstruction(tool models.AITool, promptType models.PromptType, context string) (string, error) {
	byType, ok := toolInstructions[tool]
	if !ok {
		return "", fmt.Errorf("unknown AI tool: %s", tool)
	}
	instruction, ok := byType[promptType]
	if !ok {
		return "", fmt.Errorf("unknown prompt type: %s", promptType)
	}

	subject := "prompt"
	if promptType == models.PromptTypeCreate {
		subject = "request"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert at crafting prompts for AI development tools. %s\n\n", instruction)
	fmt.Fprintf(&b, "Enhance the following %s to be more specific, technical, and effective. Include:\n", subject)
	b.WriteString("1. Clear architecture/structure\n")
	b.WriteString("2. Specific technical requirements\n")
	b.WriteString("3. Design guidelines\n")
	b.WriteString("4. Success criteria\n")
	b.WriteString("5. Error handling considerations\n\n")
	if context != "" {
		fmt.Fprintf(&b, "Additional Context:\n%s\n\n", context)
	}
	b.WriteString("Format the response in a clear, organized way with sections and bullet points.")

	return b.String(), nil
}
