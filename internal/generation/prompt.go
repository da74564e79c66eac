package generation

import (
	"context"
	"fmt"

	"visaverse-copilot/internal/models"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = `You are VisaVerse Copilot, an AI global mobility assistant helping students navigate visa applications.

CRITICAL RULES:
- Speak in simple, calm, human language
- NEVER claim legal authority
- NEVER guarantee visa approval
- Always prioritize clarity over verbosity
- If rules vary or are unclear, state assumptions explicitly
- This is guidance, not legal advice

Your role is to generate a personalized student visa roadmap using ONLY the provided country rules.`

// userPrompt is an FString template; the snippet is substituted as a value,
// so braces inside it are never interpreted.
const userPrompt = `Generate a comprehensive, personalized student visa roadmap for this student:

STUDENT PROFILE:
- Current Country: {currentCountry}
- Destination: {destinationCountry}
- Education Level: {educationLevel}
- Field of Study: {fieldOfStudy}
- Budget Range: {budgetRange}

COUNTRY VISA RULES:
{countryRules}

Please provide a structured roadmap with these sections:

## 📋 Required Documents Checklist
List all documents needed, organized by category. Mark essential ones.

## 📅 Step-by-Step Timeline
Provide a realistic timeline with specific actions and timeframes.

## 💰 Estimated Cost Breakdown
Break down all costs the student should expect.

## ⚠️ Common Rejection Risks
List the main reasons applications get rejected and how to avoid them.

## 🎯 Your Next Immediate Action
One specific, actionable step the student should take TODAY.

## 💡 Personalized Tips
Based on their profile (budget: {budgetRange}, field: {fieldOfStudy}, level: {educationLevel}), provide 3-4 specific tips.

Keep the tone practical, calm, and honest. If any information is uncertain, clearly say so.`

var roadmapTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage(systemPrompt),
	schema.UserMessage(userPrompt),
)

// BuildMessages renders the system and user messages for one request.
func BuildMessages(ctx context.Context, req models.GenerationRequest, snippet string) ([]*schema.Message, error) {
	msgs, err := roadmapTemplate.Format(ctx, map[string]any{
		"currentCountry":     req.CurrentCountry,
		"destinationCountry": req.DestinationCountry,
		"educationLevel":     req.EducationLevel,
		"fieldOfStudy":       req.FieldOfStudy,
		"budgetRange":        req.BudgetRange,
		"countryRules":       snippet,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}
	return msgs, nil
}
