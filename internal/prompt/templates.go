package prompt

// LeadContextPlaceholder is replaced by Serialize output in primaryTemplate.
const LeadContextPlaceholder = "{LEAD_CONTEXT}"

const primaryTemplate = `You are a professional Executive Assistant advisor helping founders understand which work they can delegate. Based on the founder's context below, generate a personalized delegation report.

===== FOUNDER CONTEXT =====
{LEAD_CONTEXT}

===== YOUR TASK =====
Generate exactly 30 personalized tasks: 10 daily, 10 weekly and 10 monthly.

Within each cadence, at least 4 tasks must be owned by the assistant. Across the
whole report at least 12 of the 30 tasks (40% minimum) must be assistant-owned.

===== MANDATORY TASKS =====
Every report MUST contain these four assistant-owned tasks:
1. Complete email and inbox management (daily)
2. Calendar and scheduling ownership (daily)
3. Personal life coordination: travel, appointments, vendors, family logistics (weekly)
4. Recurring business process management (monthly)
Mark each of them with the matching "mandatory_category":
"correspondence", "scheduling", "personal_life" or "recurring_processes".

===== TASK GUIDELINES =====
Assistant tasks (delegate these):
- Inbox management and responses
- Calendar scheduling and coordination
- Travel and logistics booking
- Vendor communication and follow-ups
- Data entry and CRM updates
- Meeting preparation and notes
- Expense tracking and reports
- Research and information gathering
- Document preparation and formatting

Principal tasks (the founder keeps these):
- Strategic planning and vision
- Key client relationships and sales calls
- Team leadership and 1-on-1s
- Financial decisions and fundraising
- Partnership negotiations
- Hiring decisions

===== PERSONALIZATION =====
Use the revenue level to adjust task complexity:
- Under $500k: getting organized, basic delegation
- $500k-$1M: growing pains, systems and processes
- $1M-$3M: scaling challenges, team coordination
- $3M+: strategic focus, executive-level delegation
If the founder described challenges or a time bottleneck, address them directly.

===== TASK FORMAT =====
Each task needs:
- title: 3-6 engaging words
- description: 15-25 words explaining what the task involves
- owner: "assistant" or "principal"
- delegated: true when owner is "assistant", otherwise false
- category: one of Communication|Scheduling|Operations|Strategy|Marketing|Finance|Personal|Management
- priority: "high", "medium" or "low"

` + outputContract

const outputContract = `===== OUTPUT JSON =====
{
  "tasks": {
    "daily": [
      {
        "title": "Priority Inbox Zero Maintenance",
        "description": "Processing and organizing incoming email, flagging urgent items, drafting responses, and keeping the inbox at zero.",
        "owner": "assistant",
        "delegated": true,
        "category": "Communication",
        "priority": "high",
        "mandatory_category": "correspondence"
      }
    ],
    "weekly": [],
    "monthly": []
  },
  "delegation_percent": 40,
  "delegated_count": 12,
  "total_count": 30,
  "summary": "Two or three sentences on how much time delegation frees up and what the founder should focus on."
}

REQUIREMENTS:
- Exactly 30 tasks total (10 daily, 10 weekly, 10 monthly)
- delegation_percent = round(delegated_count / 30 * 100) and at least 40
- Output ONLY valid JSON with no markdown fences and no other text.`

const simplifiedTemplate = `Create a personalized Executive Assistant delegation report for %s, a %s owner.

Generate exactly 30 tasks (10 daily, 10 weekly, 10 monthly) focusing on %s.

MANDATORY: Include these 4 core assistant areas:
1. Complete email management (daily assistant task)
2. Calendar and scheduling management (daily assistant task)
3. Personal life coordination (weekly assistant task)
4. Business process management (monthly assistant task)

Requirements:
- At least 12 tasks owned by the assistant (40%% minimum)
- Clear titles and descriptions of at least 20 characters
- A short executive summary

` + outputContract

const streamlinedTemplate = `%s delegation report - %s:

30 tasks (10 each: daily/weekly/monthly). 40%%+ assistant-owned.

Include: Email management (daily, assistant), Calendar (daily, assistant), Personal life (weekly, assistant), Process management (monthly, assistant).

Focus: %s.

` + outputContract

const emergencyTemplate = `Generate a standard Executive Assistant delegation report with 30 tasks.

Structure:
- 10 daily tasks (include email management and calendar management)
- 10 weekly tasks (include personal life management)
- 10 monthly tasks (include business process management)

At least 12 tasks must be assistant-owned (owner "assistant", delegated true).
Focus on common business owner pain points and delegation opportunities.

` + outputContract
