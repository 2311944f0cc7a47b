package service

import (
	"strings"

	"github.com/bizpilot/bizpilot-be/types"
)

// promptTemplate carries the system instruction and user-message template
// for one intent. Placeholders: {name}, {company}, {email}, {message},
// {context}.
type promptTemplate struct {
	name         string
	systemPrompt string
	userTemplate string
}

func (t promptTemplate) render(lead *types.Lead, contextBlock string) string {
	name := lead.Name
	if name == "" {
		name = "there"
	}
	company := lead.Company
	if company == "" {
		company = "your company"
	}
	message := lead.Message()
	if message == "" {
		message = "their inquiry"
	}
	return strings.NewReplacer(
		"{name}", name,
		"{company}", company,
		"{email}", lead.Email,
		"{message}", message,
		"{context}", contextBlock,
	).Replace(t.userTemplate)
}

var promptTemplates = map[types.LeadIntent]promptTemplate{
	types.IntentHot: {
		name: "high_intent_followup",
		systemPrompt: `You are a helpful sales assistant for BizPilot, a lead management automation platform.

The lead has shown HIGH purchase intent. Your goal is to:
1. Acknowledge their specific interest/question
2. Provide relevant information from the knowledge base
3. Make it easy for them to take the next step (demo, trial, purchase)

Tone: Professional but friendly. Direct and action-oriented.
Length: 80-120 words max.
Include: Clear CTA with specific next step.`,
		userTemplate: `Lead Information:
Name: {name}
Company: {company}
Email: {email}
Message: {message}

Context from our knowledge base:
{context}

Generate a personalized follow-up email that:
1. References their specific inquiry
2. Uses the provided context to answer their needs
3. Includes a clear call-to-action

Format:
SUBJECT: [subject line]
BODY: [email body]`,
	},
	types.IntentWarm: {
		name: "nurture_followup",
		systemPrompt: `You are a helpful sales assistant for BizPilot.

This lead is INTERESTED but needs nurturing. Your goal is to:
1. Acknowledge their interest
2. Educate them on how BizPilot solves their problem
3. Build trust with relevant information

Tone: Helpful and consultative, not pushy.
Length: 100-150 words.
Include: Soft CTA (learn more, see examples, etc.)`,
		userTemplate: `Lead Information:
Name: {name}
Company: {company}
Message: {message}

Relevant information:
{context}

Write a nurturing follow-up that:
1. Addresses their inquiry
2. Provides helpful context
3. Invites them to learn more

Format:
SUBJECT: [subject line]
BODY: [email body]`,
	},
	types.IntentCold: {
		name: "introduction",
		systemPrompt: `You are a helpful assistant for BizPilot.

This lead is EARLY STAGE. Your goal is to:
1. Acknowledge their inquiry professionally
2. Provide a brief introduction to BizPilot
3. Offer resources

Tone: Professional and informative, no hard sell.
Length: 60-100 words.
Include: Resource offer (guide, case study, etc.)`,
		userTemplate: `Lead Information:
Name: {name}
Email: {email}
Message: {message}

Company info:
{context}

Write a brief, professional introduction email.

Format:
SUBJECT: [subject line]
BODY: [email body]`,
	},
}

// templateFor degrades unknown intents to the cold template.
func templateFor(intent types.LeadIntent) promptTemplate {
	if t, ok := promptTemplates[intent]; ok {
		return t
	}
	return promptTemplates[types.IntentCold]
}

type fallbackTemplate struct {
	subject string
	body    string
}

var fallbackTemplates = map[types.LeadIntent]fallbackTemplate{
	types.IntentHot: {
		subject: "Re: Your BizPilot inquiry",
		body: `Hi {name},

Thanks for your interest in BizPilot!

I'd love to show you how we can help automate your lead management and boost conversions.

Are you available for a quick 15-minute demo this week?

Best,
BizPilot Team`,
	},
	types.IntentWarm: {
		subject: "Learn more about BizPilot",
		body: `Hi {name},

Thanks for reaching out!

BizPilot helps small businesses automate lead triage and follow-ups, typically improving conversion rates by 15-25%.

I'd be happy to share more details about how it works. Would you like to see a quick demo?

Best,
BizPilot Team`,
	},
	types.IntentCold: {
		subject: "Nice to meet you!",
		body: `Hi {name},

Thanks for your inquiry!

BizPilot is a lead management automation platform for small businesses. We'd be happy to share more information.

Feel free to reply if you'd like to learn more!

Best,
BizPilot Team`,
	},
}

func fallbackFor(intent types.LeadIntent) fallbackTemplate {
	if t, ok := fallbackTemplates[intent]; ok {
		return t
	}
	return fallbackTemplates[types.IntentCold]
}
