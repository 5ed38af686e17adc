package stage

// parsePrompt is the prompt template for goal parsing.
const parsePrompt = `Turn this raw goal statement into a structured goal.

Goal statement:
%s

Return ONLY a JSON object with this exact structure (no other text):
{
  "description": "One-sentence restatement of the objective",
  "success_criteria": ["Observable condition 1", "Observable condition 2"],
  "context": "Relevant background pulled from the statement, or empty",
  "priority": "low|medium|high|urgent"
}

Guidelines:
- success_criteria must be concrete and externally checkable
- Do not invent criteria the statement does not imply
- priority defaults to "medium" unless the statement signals urgency`

// clarifyGoalPrompt is the prompt template for goal-level clarification.
const clarifyGoalPrompt = `Assess whether this goal is clear enough to start work on.

Goal: %s
Success criteria:
%s

Return ONLY a JSON object with this exact structure (no other text):
{
  "isClearEnough": true,
  "confidence": 85,
  "questions": [
    {
      "question": "What needs answering",
      "blocking": false,
      "urgency": "low|medium|high",
      "why": "Why this matters",
      "assumptionIfUnanswered": "What will be assumed if nobody answers"
    }
  ]
}

Guidelines:
- confidence is an integer 0-100
- Mark a question blocking ONLY if work cannot start without the answer
- Use an empty array [] for questions when nothing needs asking`

// clarifyTaskPrompt is the prompt template for task-level clarification.
const clarifyTaskPrompt = `Assess whether this task is clear enough to execute.

Task: %s
Part of goal: %s

Return ONLY a JSON object with this exact structure (no other text):
{
  "isClearEnough": true,
  "confidence": 85,
  "questions": [
    {
      "question": "What needs answering",
      "blocking": false,
      "urgency": "low|medium|high",
      "why": "Why this matters",
      "assumptionIfUnanswered": "What will be assumed if nobody answers"
    }
  ]
}

Guidelines:
- confidence is an integer 0-100
- Mark a question blocking ONLY if execution cannot proceed without the answer
- Use an empty array [] for questions when nothing needs asking`

// decomposePrompt is the prompt template for goal decomposition.
const decomposePrompt = `Break this goal into between 1 and 10 tasks with explicit dependencies.

Goal: %s
Success criteria:
%s
Context: %s

Return ONLY a JSON object with this exact structure (no other text):
{
  "tasks": [
    {
      "description": "What this task does",
      "type": "research|code|write|review|test|design",
      "required_capabilities": ["capability tags a worker needs"],
      "effort": "small|medium|large",
      "depends_on": [0]
    }
  ]
}

Guidelines:
- depends_on lists 0-based indices of OTHER tasks in this same list
- A task must never depend on itself
- Only add a dependency when the work truly cannot start earlier
- type is an open tag; pick the closest fit
- required_capabilities should be short lowercase tags like "research" or "writing"`

// executePrompt is the prompt template for task execution.
const executePrompt = `Execute this task and report the outcome.

Task: %s
Task type: %s
Part of goal: %s
Success criteria for the goal:
%s

Return ONLY a JSON object with this exact structure (no other text):
{
  "summary": "What was done and what the outcome is",
  "artifacts": [
    {
      "kind": "document|code|link|data",
      "name": "Human-readable label",
      "location": "Where the artifact lives"
    }
  ]
}

Guidelines:
- summary must state the concrete outcome, not restate the task
- Use an empty array [] for artifacts when nothing was produced`
