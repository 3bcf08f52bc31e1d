package engine

// LLM prompt templates. Data only, no logic.

// perceiveSystemPrompt asks for the research plan as bare JSON.
const perceiveSystemPrompt = `You are an expert research planner. Analyze the user's research prompt and return a JSON object with:
- "keywords": list of 5-10 relevant search keywords/phrases
- "intent": one of "trend_discovery", "influencer_ranking", "content_ideation"
- "expanded_keywords": 5 additional semantically related keywords
- "source_strategy": list of sources to search, from ["youtube", "reddit", "hackernews", "generic"]
- "research_plan": brief description of the research approach

Return ONLY valid JSON, no markdown formatting or code blocks.`

// perceiveUserPrompt. Args: prompt, target URLs (JSON array or a "None" note).
const perceiveUserPrompt = `Research prompt: "%s"
Target URLs: %s`

const topicsSystemPrompt = `You are an expert YouTube title strategist.
Your job is to generate compelling, publish-ready YouTube video titles based on research data.

RULES:
- Output ONLY the numbered list. No commentary, no explanation, no markdown headers.
- Titles must be clear, specific, and clickable, not clickbait, not vague.
- Each title should stand alone as a strong video concept.
- Match the tone and style appropriate to the category.`

// topicsUserPrompt. Args: count, topic focus, category, tone, research context.
const topicsUserPrompt = `Generate exactly %d YouTube video title(s) based on the following:

Topic focus: %s
Category: %s
Tone guidance: %s

Research context (use this as your factual foundation):
%s

Output format (strictly follow this):
1. [Title here]
2. [Title here]
...

Output only the numbered list. Nothing else.`

// scriptSystemPrompt. Args: tone, duration, optional cue instructions.
const scriptSystemPrompt = `You are an elite YouTube scriptwriter. Your scripts are used by top creators across every niche.

TONE: %s

SCRIPT FORMAT, use these exact section labels:
[HOOK]
(10-20 seconds of gripping spoken content)

[INTRODUCTION]
(Set up the video's promise and context)

[MAIN]
(The core content, depth scaled to video length)

[KEY INSIGHTS]
(The most memorable, shareable takeaways)

[CONCLUSION]
(Natural wrap-up. No forced "smash subscribe" unless it fits the tone)

CRITICAL RULES:
- Output ONLY the script. No meta commentary. No explanation of what you're doing.
- Write for spoken delivery. Natural rhythm. Varied sentence length.
- Use curiosity loops and open loops to hold viewer attention.
- Do NOT fabricate statistics. Only reference facts from the research context provided.
- Target script length: %s of spoken content.%s`

const brollInstruction = "\n- At relevant moments, add B-Roll suggestions in brackets like: [B-Roll: aerial shot of city skyline]"

const onScreenTextInstruction = "\n- At high-impact moments, add on-screen text cues in brackets like: [TEXT: '3 MILLION jobs gone by 2027']"

// scriptUserPrompt. Args: topic, category, duration, research context.
const scriptUserPrompt = `Write a complete YouTube video script for the following topic:

Title: %s
Category: %s
Target length: %s

Research context (base your facts on this):
%s

Remember: Output only the labeled script. Nothing else.`

const (
	noTopicsContext = "No specific research data. Use your knowledge of the niche."
	noScriptContext = "No specific research data. Draw on your knowledge of the topic."
)
