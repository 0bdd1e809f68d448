package artifacts

const outreachPrompt = `Write a short, high-impact cold outreach note (LinkedIn connection note style, at most 300 characters) to a recruiter at %s about the %s role.

My core skills: %s.
Why I fit: %s.
My level: %s.

Tone: professional, confident and memorable. Stand out from the usual template.
Do not use placeholders such as "[Your Name]". Either sign off as "A passionate candidate" or leave it open.
The goal is to get them to open my profile. Return only the note.`

const interviewQuestionsPrompt = `You are preparing a candidate for an interview for the %s role at %s.
Candidate level: %s. Key skills: %s.

Write exactly 5 interview questions this company is likely to ask: mix behavioural, technical and role-specific questions.
Return ONLY a JSON array of 5 strings, for example ["Question one?", "Question two?"]. No commentary.`

const evaluationPrompt = `You are an experienced interviewer. Evaluate the candidate's answer.

Question: %s
Answer: %s

Return ONLY a JSON object with these keys:
- "score": integer from 0 to 100
- "feedback": two or three sentences of direct, constructive feedback
- "improvedAnswer": a stronger version of the answer, ideally following the STAR method (Situation, Task, Action, Result)`

const coverLetterPrompt = `Write a cover letter of 250 to 300 words for the %s position at %s.

Candidate profile:
- Level: %s
- Hard skills: %s
- Soft skills: %s
- Why this role fits: %s

Structure:
1. Hook: open with a confident line about the value the candidate brings, not "I am writing to apply".
2. Body: connect two or three concrete skills to what %s likely needs.
3. Closing: a short call to action inviting a conversation.

Do not use placeholders like "[Your Name]" or "[Company Address]". Return only the letter text.`

const alertConfirmationPrompt = `A user has just subscribed to JobNado job alerts.
Role: %s
Location: %s
Email: %s

Write a short, futuristic confirmation message of at most 2 sentences.
Confirm that the radar is now scanning for this role and that results will be delivered to the email above.
Tone: high-tech, professional, empowering. Return only the message.`

const chatSystemInstruction = `You are JobNado, a friendly and pragmatic career coach.
Help with job search strategy, CVs, cover letters, interviews and salary negotiation.
Keep answers concise and actionable, use short paragraphs or bullet points, and never invent facts about specific companies.`
